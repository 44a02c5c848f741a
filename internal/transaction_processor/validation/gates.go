package validation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/transactionprocessing/transaction-processor/internal/domain/estate"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

func deviceRegistered(merchant *estate.MerchantSnapshot, deviceIdentifier string) bool {
	for _, device := range merchant.Devices {
		if device == deviceIdentifier {
			return true
		}
	}
	return false
}

// gateLogonDevice allows a logon from a merchant with no registered devices;
// the device is expected to be added as part of the logon flow. A device that
// is absent from a non-empty list is still rejected.
func gateLogonDevice(s *Snapshot) *Outcome {
	if len(s.Merchant.Devices) == 0 {
		return terminal(shared.ResponseCodeSuccessNeedToAddDevice,
			fmt.Sprintf("Device %s not recognised, will be added to merchant", s.Request.DeviceIdentifier))
	}
	if !deviceRegistered(s.Merchant, s.Request.DeviceIdentifier) {
		return terminal(shared.ResponseCodeInvalidDeviceIdentifier,
			fmt.Sprintf("Device identifier %s not valid for merchant %s", s.Request.DeviceIdentifier, s.Merchant.Name))
	}
	return nil
}

// gateDevice is the strict device check used for sale and reconciliation
// transactions: an empty device list is itself a failure.
func gateDevice(s *Snapshot) *Outcome {
	if len(s.Merchant.Devices) == 0 {
		return terminal(shared.ResponseCodeNoValidDevices,
			fmt.Sprintf("Merchant %s has no valid devices", s.Merchant.Name))
	}
	if !deviceRegistered(s.Merchant, s.Request.DeviceIdentifier) {
		return terminal(shared.ResponseCodeInvalidDeviceIdentifier,
			fmt.Sprintf("Device identifier %s not valid for merchant %s", s.Request.DeviceIdentifier, s.Merchant.Name))
	}
	return nil
}

func gateEstateOperators(s *Snapshot) *Outcome {
	if len(s.Estate.Operators) == 0 {
		return terminal(shared.ResponseCodeNoEstateOperators,
			fmt.Sprintf("Estate %s has no operators configured", s.Estate.Name))
	}
	return nil
}

func gateEstateOperatorState(s *Snapshot) *Outcome {
	for _, operator := range s.Estate.Operators {
		if operator.OperatorID == s.Request.OperatorID {
			if operator.IsDeleted {
				return terminal(shared.ResponseCodeOperatorNotEnabledForEstate,
					fmt.Sprintf("Operator %s is not enabled for estate %s", s.Request.OperatorID, s.Estate.Name))
			}
			return nil
		}
	}
	return terminal(shared.ResponseCodeOperatorNotValidForEstate,
		fmt.Sprintf("Operator %s is not configured for estate %s", s.Request.OperatorID, s.Estate.Name))
}

func gateMerchantOperators(s *Snapshot) *Outcome {
	if len(s.Merchant.Operators) == 0 {
		return terminal(shared.ResponseCodeNoMerchantOperators,
			fmt.Sprintf("Merchant %s has no operators configured", s.Merchant.Name))
	}
	return nil
}

func gateMerchantOperatorState(s *Snapshot) *Outcome {
	for _, operator := range s.Merchant.Operators {
		if operator.OperatorID == s.Request.OperatorID {
			if operator.IsDeleted {
				return terminal(shared.ResponseCodeOperatorNotEnabledForMerchant,
					fmt.Sprintf("Operator %s is not enabled for merchant %s", s.Request.OperatorID, s.Merchant.Name))
			}
			return nil
		}
	}
	return terminal(shared.ResponseCodeOperatorNotValidForMerchant,
		fmt.Sprintf("Operator %s is not configured for merchant %s", s.Request.OperatorID, s.Merchant.Name))
}

func gateSaleAmount(s *Snapshot) *Outcome {
	if s.Request.Amount == nil || !s.Request.Amount.IsPositive() {
		return terminal(shared.ResponseCodeInvalidSaleTransactionAmount,
			"Sale transaction amount must be greater than zero")
	}
	return nil
}

func gateContractID(s *Snapshot) *Outcome {
	if s.Request.ContractID == uuid.Nil {
		return terminal(shared.ResponseCodeInvalidContractID, "Contract id must be set for a sale transaction")
	}
	return nil
}

func gateMerchantContracts(s *Snapshot) *Outcome {
	if len(s.Contracts) == 0 {
		return terminal(shared.ResponseCodeMerchantHasNoContractsConfigured,
			fmt.Sprintf("Merchant %s has no contracts configured", s.Merchant.Name))
	}
	return nil
}

func findContract(contracts []estate.ContractSnapshot, contractID uuid.UUID) *estate.ContractSnapshot {
	for i := range contracts {
		if contracts[i].ContractID == contractID {
			return &contracts[i]
		}
	}
	return nil
}

func gateContractAssigned(s *Snapshot) *Outcome {
	if findContract(s.Contracts, s.Request.ContractID) == nil {
		return terminal(shared.ResponseCodeContractNotValidForMerchant,
			fmt.Sprintf("Contract %s is not assigned to merchant %s", s.Request.ContractID, s.Merchant.Name))
	}
	return nil
}

func gateProduct(s *Snapshot) *Outcome {
	if s.Request.ProductID == uuid.Nil {
		return terminal(shared.ResponseCodeInvalidProductID, "Product id must be set for a sale transaction")
	}
	contract := findContract(s.Contracts, s.Request.ContractID)
	if contract != nil {
		for _, product := range contract.Products {
			if product.ProductID == s.Request.ProductID {
				return nil
			}
		}
	}
	return terminal(shared.ResponseCodeProductNotValidForMerchant,
		fmt.Sprintf("Product %s is not configured under contract %s", s.Request.ProductID, s.Request.ContractID))
}

func gateMerchantBalance(s *Snapshot) *Outcome {
	if s.Balance == nil || s.Balance.Balance.LessThan(*s.Request.Amount) {
		return terminal(shared.ResponseCodeMerchantDoesNotHaveEnoughCredit,
			fmt.Sprintf("Merchant %s does not have enough credit for the transaction", s.Merchant.Name))
	}
	return nil
}

// logonGates gate a logon transaction
func logonGates() []Gate {
	return []Gate{
		gateLogonDevice,
	}
}

// reconciliationGates gate a reconciliation transaction
func reconciliationGates() []Gate {
	return []Gate{
		gateDevice,
	}
}

// saleGates gate a sale transaction; the order matches the decision tree and
// is significant because the first terminal outcome wins
func saleGates() []Gate {
	return []Gate{
		gateDevice,
		gateEstateOperators,
		gateEstateOperatorState,
		gateMerchantOperators,
		gateMerchantOperatorState,
		gateSaleAmount,
		gateContractID,
		gateMerchantContracts,
		gateContractAssigned,
		gateProduct,
		gateMerchantBalance,
	}
}
