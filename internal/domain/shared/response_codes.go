package shared

import "fmt"

// ResponseCode is the business outcome of the transaction validation chain.
// Codes below 1000 are success codes; everything else is a decline reason.
type ResponseCode int

const (
	ResponseCodeSuccess                ResponseCode = 0
	ResponseCodeSuccessNeedToAddDevice ResponseCode = 1

	ResponseCodeInvalidEstateID                  ResponseCode = 1000
	ResponseCodeInvalidMerchantID                ResponseCode = 1001
	ResponseCodeInvalidDeviceIdentifier          ResponseCode = 1002
	ResponseCodeNoValidDevices                   ResponseCode = 1003
	ResponseCodeNoEstateOperators                ResponseCode = 1004
	ResponseCodeOperatorNotEnabledForEstate      ResponseCode = 1005
	ResponseCodeOperatorNotValidForEstate        ResponseCode = 1006
	ResponseCodeNoMerchantOperators              ResponseCode = 1007
	ResponseCodeOperatorNotEnabledForMerchant    ResponseCode = 1008
	ResponseCodeOperatorNotValidForMerchant      ResponseCode = 1009
	ResponseCodeInvalidSaleTransactionAmount     ResponseCode = 1010
	ResponseCodeInvalidContractID                ResponseCode = 1011
	ResponseCodeMerchantHasNoContractsConfigured ResponseCode = 1012
	ResponseCodeContractNotValidForMerchant      ResponseCode = 1013
	ResponseCodeInvalidProductID                 ResponseCode = 1014
	ResponseCodeProductNotValidForMerchant       ResponseCode = 1015
	ResponseCodeMerchantDoesNotHaveEnoughCredit  ResponseCode = 1016

	ResponseCodeUnknownFailure ResponseCode = 9999
)

// IsSuccess reports whether the code allows the transaction to proceed.
// SuccessNeedToAddDevice is a success outcome for logon transactions whose
// merchant has no devices registered yet.
func (c ResponseCode) IsSuccess() bool {
	return c == ResponseCodeSuccess || c == ResponseCodeSuccessNeedToAddDevice
}

// WireCode renders the code in the four-digit form carried on receipts
func (c ResponseCode) WireCode() string {
	return fmt.Sprintf("%04d", int(c))
}

func (c ResponseCode) String() string {
	switch c {
	case ResponseCodeSuccess:
		return "Success"
	case ResponseCodeSuccessNeedToAddDevice:
		return "SuccessNeedToAddDevice"
	case ResponseCodeInvalidEstateID:
		return "InvalidEstateId"
	case ResponseCodeInvalidMerchantID:
		return "InvalidMerchantId"
	case ResponseCodeInvalidDeviceIdentifier:
		return "InvalidDeviceIdentifier"
	case ResponseCodeNoValidDevices:
		return "NoValidDevices"
	case ResponseCodeNoEstateOperators:
		return "NoEstateOperators"
	case ResponseCodeOperatorNotEnabledForEstate:
		return "OperatorNotEnabledForEstate"
	case ResponseCodeOperatorNotValidForEstate:
		return "OperatorNotValidForEstate"
	case ResponseCodeNoMerchantOperators:
		return "NoMerchantOperators"
	case ResponseCodeOperatorNotEnabledForMerchant:
		return "OperatorNotEnabledForMerchant"
	case ResponseCodeOperatorNotValidForMerchant:
		return "OperatorNotValidForMerchant"
	case ResponseCodeInvalidSaleTransactionAmount:
		return "InvalidSaleTransactionAmount"
	case ResponseCodeInvalidContractID:
		return "InvalidContractIdValue"
	case ResponseCodeMerchantHasNoContractsConfigured:
		return "MerchantHasNoContractsConfigured"
	case ResponseCodeContractNotValidForMerchant:
		return "ContractNotValidForMerchant"
	case ResponseCodeInvalidProductID:
		return "InvalidProductIdValue"
	case ResponseCodeProductNotValidForMerchant:
		return "ProductNotValidForMerchant"
	case ResponseCodeMerchantDoesNotHaveEnoughCredit:
		return "MerchantDoesNotHaveEnoughCredit"
	default:
		return "UnknownFailure"
	}
}
