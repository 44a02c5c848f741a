package transaction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func startedSale(t *testing.T) *Transaction {
	t.Helper()
	txn := New(uuid.New())
	err := txn.Start(time.Now(), "0001", TypeSale, "REF0001", uuid.New(), uuid.New(), "device1", decimalPtr("100.00"))
	require.NoError(t, err)
	return txn
}

func completedAuthorisedSale(t *testing.T) *Transaction {
	t.Helper()
	txn := startedSale(t)
	require.NoError(t, txn.AddProductDetails(uuid.New(), uuid.New()))
	require.NoError(t, txn.Authorise("Operator1", "AUTH1", "00", "SUCCESS", "OP1", "0000", "SUCCESS"))
	require.NoError(t, txn.Complete())
	return txn
}

func TestTransaction_Start(t *testing.T) {
	t.Run("SuccessfulStart", func(t *testing.T) {
		txn := New(uuid.New())
		estateID := uuid.New()
		merchantID := uuid.New()
		dateTime := time.Now()

		err := txn.Start(dateTime, "0001", TypeSale, "REF0001", estateID, merchantID, "device1", decimalPtr("100.00"))

		require.NoError(t, err)
		assert.True(t, txn.IsStarted)
		assert.Equal(t, TypeSale, txn.Type)
		assert.Equal(t, "0001", txn.TransactionNumber)
		assert.Equal(t, "REF0001", txn.TransactionReference)
		assert.Equal(t, estateID, txn.EstateID)
		assert.Equal(t, merchantID, txn.MerchantID)
		assert.Equal(t, "device1", txn.DeviceIdentifier)
		assert.Equal(t, dateTime, txn.TransactionDateTime)
		require.NotNil(t, txn.Amount)
		assert.True(t, txn.Amount.Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, 1, txn.Version)
	})

	t.Run("LogonWithNilAmount", func(t *testing.T) {
		txn := New(uuid.New())
		err := txn.Start(time.Now(), "0001", TypeLogon, "REF0001", uuid.New(), uuid.New(), "device1", nil)

		require.NoError(t, err)
		assert.Nil(t, txn.Amount)
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		estateID := uuid.New()
		merchantID := uuid.New()

		testCases := []struct {
			name             string
			dateTime         time.Time
			number           string
			transactionType  Type
			reference        string
			estateID         uuid.UUID
			merchantID       uuid.UUID
			deviceIdentifier string
		}{
			{"ZeroDateTime", time.Time{}, "0001", TypeSale, "REF0001", estateID, merchantID, "device1"},
			{"EmptyNumber", time.Now(), "", TypeSale, "REF0001", estateID, merchantID, "device1"},
			{"UnrecognisedType", time.Now(), "0001", Type("Refund"), "REF0001", estateID, merchantID, "device1"},
			{"EmptyReference", time.Now(), "0001", TypeSale, "", estateID, merchantID, "device1"},
			{"NilEstateID", time.Now(), "0001", TypeSale, "REF0001", uuid.Nil, merchantID, "device1"},
			{"NilMerchantID", time.Now(), "0001", TypeSale, "REF0001", estateID, uuid.Nil, "device1"},
			{"EmptyDeviceIdentifier", time.Now(), "0001", TypeSale, "REF0001", estateID, merchantID, ""},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				txn := New(uuid.New())
				err := txn.Start(tc.dateTime, tc.number, tc.transactionType, tc.reference, tc.estateID, tc.merchantID, tc.deviceIdentifier, decimalPtr("100.00"))

				require.Error(t, err)
				assert.Equal(t, shared.ErrorKindArgumentInvalid, shared.KindOf(err))
				assert.False(t, txn.IsStarted)
			})
		}
	})

	t.Run("AlreadyStarted", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.Start(time.Now(), "0002", TypeSale, "REF0002", uuid.New(), uuid.New(), "device1", decimalPtr("50.00"))

		require.Error(t, err)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		txn := completedAuthorisedSale(t)
		err := txn.Start(time.Now(), "0002", TypeSale, "REF0002", uuid.New(), uuid.New(), "device1", decimalPtr("50.00"))

		require.Error(t, err)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})
}

func TestTransaction_AddProductDetails(t *testing.T) {
	t.Run("Successful", func(t *testing.T) {
		txn := startedSale(t)
		contractID := uuid.New()
		productID := uuid.New()

		err := txn.AddProductDetails(contractID, productID)

		require.NoError(t, err)
		assert.True(t, txn.IsProductDetailsAdded)
		assert.Equal(t, contractID, txn.ContractID)
		assert.Equal(t, productID, txn.ProductID)
	})

	t.Run("NilContractID", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.AddProductDetails(uuid.Nil, uuid.New())
		assert.Equal(t, shared.ErrorKindArgumentInvalid, shared.KindOf(err))
	})

	t.Run("NilProductID", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.AddProductDetails(uuid.New(), uuid.Nil)
		assert.Equal(t, shared.ErrorKindArgumentInvalid, shared.KindOf(err))
	})

	t.Run("NotStarted", func(t *testing.T) {
		txn := New(uuid.New())
		err := txn.AddProductDetails(uuid.New(), uuid.New())
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("AlreadyAdded", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.AddProductDetails(uuid.New(), uuid.New()))

		err := txn.AddProductDetails(uuid.New(), uuid.New())
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		txn := New(uuid.New())
		require.NoError(t, txn.Start(time.Now(), "0001", TypeLogon, "REF0001", uuid.New(), uuid.New(), "device1", nil))
		require.NoError(t, txn.AuthoriseLocally("ABCD1234", "0000", "SUCCESS"))
		require.NoError(t, txn.Complete())

		err := txn.AddProductDetails(uuid.New(), uuid.New())
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})
}

func TestTransaction_AddSource(t *testing.T) {
	t.Run("Successful", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.AddSource(SourceOnlineSale))
		assert.Equal(t, SourceOnlineSale, txn.Source)
	})

	t.Run("SameValueIsNoOp", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.AddSource(SourceOnlineSale))
		versionBefore := txn.Version

		err := txn.AddSource(SourceOnlineSale)

		require.NoError(t, err)
		assert.Equal(t, versionBefore, txn.Version)
	})

	t.Run("DifferentValueIsRejected", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.AddSource(SourceOnlineSale))

		err := txn.AddSource(SourceFileImport)

		require.Error(t, err)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
		assert.Equal(t, SourceOnlineSale, txn.Source)
	})

	t.Run("UnrecognisedValue", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.AddSource(Source("Telephone"))
		assert.Equal(t, shared.ErrorKindArgumentInvalid, shared.KindOf(err))
	})
}

func TestTransaction_Decisions(t *testing.T) {
	t.Run("AuthoriseLocally", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.AuthoriseLocally("ABCD1234", "0000", "SUCCESS")

		require.NoError(t, err)
		assert.True(t, txn.IsLocallyAuthorised)
		assert.Equal(t, "ABCD1234", txn.AuthorisationCode)
		assert.Equal(t, "0000", txn.ResponseCode)
		assert.Equal(t, "SUCCESS", txn.ResponseMessage)
	})

	t.Run("AuthoriseViaOperator", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.Authorise("Operator1", "OPAUTH1", "00", "APPROVED", "OPTXN1", "0000", "SUCCESS")

		require.NoError(t, err)
		assert.True(t, txn.IsAuthorised)
		assert.Equal(t, "Operator1", txn.OperatorIdentifier)
		assert.Equal(t, "OPAUTH1", txn.OperatorAuthorisationCode)
		assert.Equal(t, "OPTXN1", txn.OperatorTransactionID)
	})

	t.Run("DeclineLocally", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.DeclineLocally("1002", "InvalidDeviceIdentifier")

		require.NoError(t, err)
		assert.True(t, txn.IsLocallyDeclined)
		assert.Equal(t, "1002", txn.ResponseCode)
	})

	t.Run("DeclineViaOperator", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.Decline("Operator1", "05", "DO NOT HONOR", "9999", "DECLINED")

		require.NoError(t, err)
		assert.True(t, txn.IsDeclined)
		assert.Equal(t, "Operator1", txn.OperatorIdentifier)
	})

	t.Run("DecisionIsSingleAssignment", func(t *testing.T) {
		decisions := map[string]func(txn *Transaction) error{
			"AuthoriseLocally": func(txn *Transaction) error { return txn.AuthoriseLocally("A", "0000", "OK") },
			"Authorise":        func(txn *Transaction) error { return txn.Authorise("Op", "A", "00", "OK", "T", "0000", "OK") },
			"DeclineLocally":   func(txn *Transaction) error { return txn.DeclineLocally("9999", "NO") },
			"Decline":          func(txn *Transaction) error { return txn.Decline("Op", "05", "NO", "9999", "NO") },
		}

		for firstName, first := range decisions {
			for secondName, second := range decisions {
				t.Run(firstName+"Then"+secondName, func(t *testing.T) {
					txn := startedSale(t)
					require.NoError(t, first(txn))

					err := second(txn)

					require.Error(t, err)
					assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
				})
			}
		}
	})

	t.Run("DecisionRequiresStartedTransaction", func(t *testing.T) {
		txn := New(uuid.New())
		err := txn.AuthoriseLocally("A", "0000", "OK")
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})
}

func TestTransaction_Complete(t *testing.T) {
	t.Run("Successful", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.AuthoriseLocally("A", "0000", "OK"))

		err := txn.Complete()

		require.NoError(t, err)
		assert.True(t, txn.IsCompleted)
	})

	t.Run("CompletesAfterDecline", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.DeclineLocally("9999", "NO"))
		assert.NoError(t, txn.Complete())
	})

	t.Run("NotStarted", func(t *testing.T) {
		txn := New(uuid.New())
		err := txn.Complete()
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("NoDecisionReached", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.Complete()
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		txn := completedAuthorisedSale(t)
		err := txn.Complete()
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})
}

func TestTransaction_AdditionalData(t *testing.T) {
	metadata := map[string]string{"CustomerAccountNumber": "123456"}

	t.Run("RecordRequestData", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.RecordAdditionalRequestData("Operator1", metadata)

		require.NoError(t, err)
		assert.Equal(t, metadata, txn.AdditionalRequestData["Operator1"])
	})

	t.Run("EmptyMapIsNoOp", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.RecordAdditionalRequestData("Operator1", nil))
		require.NoError(t, txn.RecordAdditionalRequestData("Operator1", map[string]string{}))
		assert.Empty(t, txn.AdditionalRequestData)
	})

	t.Run("RequestDataWriteOnce", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.RecordAdditionalRequestData("Operator1", metadata))

		err := txn.RecordAdditionalRequestData("Operator1", metadata)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("ResponseDataWriteOnce", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.RecordAdditionalResponseData("Operator1", metadata))

		err := txn.RecordAdditionalResponseData("Operator1", metadata)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("RejectedAfterDecision", func(t *testing.T) {
		txn := startedSale(t)
		require.NoError(t, txn.AuthoriseLocally("A", "0000", "OK"))

		err := txn.RecordAdditionalRequestData("Operator1", metadata)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))

		err = txn.RecordAdditionalResponseData("Operator1", metadata)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("RejectedWhenNotStarted", func(t *testing.T) {
		txn := New(uuid.New())
		err := txn.RecordAdditionalRequestData("Operator1", metadata)
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})
}

func TestTransaction_EmailReceipt(t *testing.T) {
	t.Run("RequestReceipt", func(t *testing.T) {
		txn := completedAuthorisedSale(t)
		err := txn.RequestEmailReceipt("customer@example.com")

		require.NoError(t, err)
		assert.True(t, txn.CustomerEmailReceiptHasBeenRequested)
		assert.Equal(t, "customer@example.com", txn.CustomerEmailAddress)
	})

	t.Run("RequiresCompletedTransaction", func(t *testing.T) {
		txn := startedSale(t)
		err := txn.RequestEmailReceipt("customer@example.com")
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("AlreadyRequested", func(t *testing.T) {
		txn := completedAuthorisedSale(t)
		require.NoError(t, txn.RequestEmailReceipt("customer@example.com"))

		err := txn.RequestEmailReceipt("customer@example.com")
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})

	t.Run("ResendIncrementsCount", func(t *testing.T) {
		txn := completedAuthorisedSale(t)
		require.NoError(t, txn.RequestEmailReceipt("customer@example.com"))

		require.NoError(t, txn.RequestEmailReceiptResend())
		require.NoError(t, txn.RequestEmailReceiptResend())

		assert.Equal(t, 2, txn.ReceiptResendCount)
	})

	t.Run("ResendWithoutRequest", func(t *testing.T) {
		txn := completedAuthorisedSale(t)
		err := txn.RequestEmailReceiptResend()
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})
}

func TestTransaction_RecordCostPrice(t *testing.T) {
	t.Run("Successful", func(t *testing.T) {
		txn := New(uuid.New())
		err := txn.RecordCostPrice(decimal.RequireFromString("0.90"), decimal.RequireFromString("90.00"))

		require.NoError(t, err)
		require.NotNil(t, txn.UnitCost)
		require.NotNil(t, txn.TotalCost)
		assert.True(t, txn.UnitCost.Equal(decimal.RequireFromString("0.90")))
		assert.True(t, txn.TotalCost.Equal(decimal.RequireFromString("90.00")))
	})

	t.Run("WriteOnce", func(t *testing.T) {
		txn := New(uuid.New())
		require.NoError(t, txn.RecordCostPrice(decimal.RequireFromString("0.90"), decimal.RequireFromString("90.00")))

		err := txn.RecordCostPrice(decimal.RequireFromString("0.95"), decimal.RequireFromString("95.00"))
		assert.Equal(t, shared.ErrorKindIllegalState, shared.KindOf(err))
	})
}
