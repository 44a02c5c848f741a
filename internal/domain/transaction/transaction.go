package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// Type classifies a transaction
type Type string

const (
	TypeLogon          Type = "Logon"
	TypeSale           Type = "Sale"
	TypeReconciliation Type = "Reconciliation"
)

// IsValid reports whether the type is a recognised enum value
func (t Type) IsValid() bool {
	switch t {
	case TypeLogon, TypeSale, TypeReconciliation:
		return true
	}
	return false
}

// Source records where a transaction originated
type Source string

const (
	SourceOnlineSale Source = "OnlineSale"
	SourceFileImport Source = "FileImport"
)

// IsValid reports whether the source is a recognised enum value
func (s Source) IsValid() bool {
	switch s {
	case SourceOnlineSale, SourceFileImport:
		return true
	}
	return false
}

// Transaction is the per-transaction state machine. Decision state is
// single-assignment: at most one of the four decision flags is ever set, and
// once set it cannot be changed. The aggregate is loaded fresh per call and is
// not shared across concurrent invocations; the version counter is the
// optimistic-concurrency token checked by the store on save.
type Transaction struct {
	ID      uuid.UUID `json:"id"`
	Version int       `json:"version"`

	// version last seen in the store; not part of the snapshot
	persistedVersion int

	Type                 Type             `json:"type,omitempty"`
	Source               Source           `json:"source,omitempty"`
	EstateID             uuid.UUID        `json:"estate_id"`
	MerchantID           uuid.UUID        `json:"merchant_id"`
	DeviceIdentifier     string           `json:"device_identifier,omitempty"`
	TransactionDateTime  time.Time        `json:"transaction_date_time"`
	TransactionNumber    string           `json:"transaction_number,omitempty"`
	TransactionReference string           `json:"transaction_reference,omitempty"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`

	ContractID uuid.UUID `json:"contract_id"`
	ProductID  uuid.UUID `json:"product_id"`

	IsStarted             bool `json:"is_started"`
	IsProductDetailsAdded bool `json:"is_product_details_added"`
	IsCompleted           bool `json:"is_completed"`

	IsLocallyAuthorised bool `json:"is_locally_authorised"`
	IsAuthorised        bool `json:"is_authorised"`
	IsLocallyDeclined   bool `json:"is_locally_declined"`
	IsDeclined          bool `json:"is_declined"`

	AuthorisationCode string `json:"authorisation_code,omitempty"`
	ResponseCode      string `json:"response_code,omitempty"`
	ResponseMessage   string `json:"response_message,omitempty"`

	OperatorIdentifier        string `json:"operator_identifier,omitempty"`
	OperatorAuthorisationCode string `json:"operator_authorisation_code,omitempty"`
	OperatorResponseCode      string `json:"operator_response_code,omitempty"`
	OperatorResponseMessage   string `json:"operator_response_message,omitempty"`
	OperatorTransactionID     string `json:"operator_transaction_id,omitempty"`

	AdditionalRequestData  map[string]map[string]string `json:"additional_request_data,omitempty"`
	AdditionalResponseData map[string]map[string]string `json:"additional_response_data,omitempty"`

	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost *decimal.Decimal `json:"total_cost,omitempty"`

	CustomerEmailAddress                 string `json:"customer_email_address,omitempty"`
	CustomerEmailReceiptHasBeenRequested bool   `json:"customer_email_receipt_requested"`
	ReceiptResendCount                   int    `json:"receipt_resend_count"`

	Fees []CalculatedFee `json:"fees,omitempty"`
}

// New returns an empty, uninitialised transaction aggregate for the given id
func New(id uuid.UUID) *Transaction {
	return &Transaction{ID: id}
}

// AggregateID implements shared.AggregateRoot
func (t *Transaction) AggregateID() uuid.UUID {
	return t.ID
}

// AggregateVersion implements shared.AggregateRoot
func (t *Transaction) AggregateVersion() int {
	return t.Version
}

// PersistedVersion implements shared.AggregateRoot
func (t *Transaction) PersistedVersion() int {
	return t.persistedVersion
}

// MarkPersisted implements shared.AggregateRoot
func (t *Transaction) MarkPersisted() {
	t.persistedVersion = t.Version
}

func (t *Transaction) touch() {
	t.Version++
}

// HasBeenAuthorised reports whether the transaction was authorised, locally or by an operator
func (t *Transaction) HasBeenAuthorised() bool {
	return t.IsAuthorised || t.IsLocallyAuthorised
}

// HasBeenDeclined reports whether the transaction was declined, locally or by an operator
func (t *Transaction) HasBeenDeclined() bool {
	return t.IsDeclined || t.IsLocallyDeclined
}

func (t *Transaction) hasDecision() bool {
	return t.HasBeenAuthorised() || t.HasBeenDeclined()
}

// Start begins the transaction workflow. A nil amount is accepted; per-type
// amount presence is the caller's responsibility, logon transactions carry no
// amount at all.
func (t *Transaction) Start(dateTime time.Time, number string, transactionType Type, reference string,
	estateID uuid.UUID, merchantID uuid.UUID, deviceIdentifier string, amount *decimal.Decimal) error {
	if dateTime.IsZero() {
		return shared.NewArgumentInvalid("transaction date time must be set")
	}
	if number == "" {
		return shared.NewArgumentInvalid("transaction number is required")
	}
	if !transactionType.IsValid() {
		return shared.NewArgumentInvalid("transaction type [%s] is not recognised", transactionType)
	}
	if reference == "" {
		return shared.NewArgumentInvalid("transaction reference is required")
	}
	if estateID == uuid.Nil {
		return shared.NewArgumentInvalid("estate id is required")
	}
	if merchantID == uuid.Nil {
		return shared.NewArgumentInvalid("merchant id is required")
	}
	if deviceIdentifier == "" {
		return shared.NewArgumentInvalid("device identifier is required")
	}
	if t.IsStarted {
		return shared.NewIllegalState("transaction [%s] has already been started", t.ID)
	}
	if t.IsCompleted {
		return shared.NewIllegalState("transaction [%s] has already been completed", t.ID)
	}

	t.TransactionDateTime = dateTime
	t.TransactionNumber = number
	t.Type = transactionType
	t.TransactionReference = reference
	t.EstateID = estateID
	t.MerchantID = merchantID
	t.DeviceIdentifier = deviceIdentifier
	t.Amount = amount
	t.IsStarted = true
	t.touch()
	return nil
}

// AddProductDetails links the contract and product the sale is made under.
// Valid only after Start and before Complete, and only once.
func (t *Transaction) AddProductDetails(contractID uuid.UUID, productID uuid.UUID) error {
	if contractID == uuid.Nil {
		return shared.NewArgumentInvalid("contract id is required")
	}
	if productID == uuid.Nil {
		return shared.NewArgumentInvalid("product id is required")
	}
	if !t.IsStarted {
		return shared.NewIllegalState("transaction [%s] has not been started", t.ID)
	}
	if t.IsCompleted {
		return shared.NewIllegalState("transaction [%s] has already been completed", t.ID)
	}
	if t.IsProductDetailsAdded {
		return shared.NewIllegalState("product details have already been added to transaction [%s]", t.ID)
	}

	t.ContractID = contractID
	t.ProductID = productID
	t.IsProductDetailsAdded = true
	t.touch()
	return nil
}

// AddSource records where the transaction originated. Re-applying the same
// value is a no-op; a differing value is rejected.
func (t *Transaction) AddSource(source Source) error {
	if !source.IsValid() {
		return shared.NewArgumentInvalid("transaction source [%s] is not recognised", source)
	}
	if t.Source == source {
		return nil
	}
	if t.Source != "" {
		return shared.NewIllegalState("transaction [%s] source has already been set to [%s]", t.ID, t.Source)
	}

	t.Source = source
	t.touch()
	return nil
}

func (t *Transaction) guardDecision() error {
	if !t.IsStarted {
		return shared.NewIllegalState("transaction [%s] has not been started", t.ID)
	}
	if t.HasBeenAuthorised() {
		return shared.NewIllegalState("transaction [%s] has already been authorised", t.ID)
	}
	if t.HasBeenDeclined() {
		return shared.NewIllegalState("transaction [%s] has already been declined", t.ID)
	}
	return nil
}

// AuthoriseLocally records an authorisation decision made without an operator
func (t *Transaction) AuthoriseLocally(authorisationCode string, responseCode string, responseMessage string) error {
	if err := t.guardDecision(); err != nil {
		return err
	}

	t.IsLocallyAuthorised = true
	t.AuthorisationCode = authorisationCode
	t.ResponseCode = responseCode
	t.ResponseMessage = responseMessage
	t.touch()
	return nil
}

// Authorise records an authorisation decision returned by an operator
func (t *Transaction) Authorise(operatorIdentifier string, operatorAuthorisationCode string, operatorResponseCode string,
	operatorResponseMessage string, operatorTransactionID string, responseCode string, responseMessage string) error {
	if err := t.guardDecision(); err != nil {
		return err
	}

	t.IsAuthorised = true
	t.OperatorIdentifier = operatorIdentifier
	t.OperatorAuthorisationCode = operatorAuthorisationCode
	t.OperatorResponseCode = operatorResponseCode
	t.OperatorResponseMessage = operatorResponseMessage
	t.OperatorTransactionID = operatorTransactionID
	t.ResponseCode = responseCode
	t.ResponseMessage = responseMessage
	t.touch()
	return nil
}

// DeclineLocally records a decline decision made without an operator
func (t *Transaction) DeclineLocally(responseCode string, responseMessage string) error {
	if err := t.guardDecision(); err != nil {
		return err
	}

	t.IsLocallyDeclined = true
	t.ResponseCode = responseCode
	t.ResponseMessage = responseMessage
	t.touch()
	return nil
}

// Decline records a decline decision returned by an operator
func (t *Transaction) Decline(operatorIdentifier string, operatorResponseCode string, operatorResponseMessage string,
	responseCode string, responseMessage string) error {
	if err := t.guardDecision(); err != nil {
		return err
	}

	t.IsDeclined = true
	t.OperatorIdentifier = operatorIdentifier
	t.OperatorResponseCode = operatorResponseCode
	t.OperatorResponseMessage = operatorResponseMessage
	t.ResponseCode = responseCode
	t.ResponseMessage = responseMessage
	t.touch()
	return nil
}

// Complete closes the transaction. A decision, authorised or declined, must
// have been reached first.
func (t *Transaction) Complete() error {
	if !t.IsStarted {
		return shared.NewIllegalState("transaction [%s] has not been started", t.ID)
	}
	if !t.hasDecision() {
		return shared.NewIllegalState("transaction [%s] has not been authorised or declined", t.ID)
	}
	if t.IsCompleted {
		return shared.NewIllegalState("transaction [%s] has already been completed", t.ID)
	}

	t.IsCompleted = true
	t.touch()
	return nil
}

// RecordAdditionalRequestData stores operator-keyed request metadata. An empty
// map is a no-op. The data can be written once, before any decision is reached.
func (t *Transaction) RecordAdditionalRequestData(operatorIdentifier string, metadata map[string]string) error {
	if len(metadata) == 0 {
		return nil
	}
	if !t.IsStarted {
		return shared.NewIllegalState("transaction [%s] has not been started", t.ID)
	}
	if len(t.AdditionalRequestData) != 0 {
		return shared.NewIllegalState("additional request data has already been recorded for transaction [%s]", t.ID)
	}
	if t.hasDecision() || t.IsCompleted {
		return shared.NewIllegalState("transaction [%s] has already reached a decision", t.ID)
	}

	t.AdditionalRequestData = map[string]map[string]string{operatorIdentifier: metadata}
	t.touch()
	return nil
}

// RecordAdditionalResponseData stores operator-keyed response metadata with
// the same write-once, pre-decision rules as the request data.
func (t *Transaction) RecordAdditionalResponseData(operatorIdentifier string, metadata map[string]string) error {
	if len(metadata) == 0 {
		return nil
	}
	if !t.IsStarted {
		return shared.NewIllegalState("transaction [%s] has not been started", t.ID)
	}
	if len(t.AdditionalResponseData) != 0 {
		return shared.NewIllegalState("additional response data has already been recorded for transaction [%s]", t.ID)
	}
	if t.hasDecision() || t.IsCompleted {
		return shared.NewIllegalState("transaction [%s] has already reached a decision", t.ID)
	}

	t.AdditionalResponseData = map[string]map[string]string{operatorIdentifier: metadata}
	t.touch()
	return nil
}

// RequestEmailReceipt asks for a customer email receipt on a completed transaction
func (t *Transaction) RequestEmailReceipt(customerEmailAddress string) error {
	if !t.IsCompleted {
		return shared.NewIllegalState("transaction [%s] has not been completed", t.ID)
	}
	if t.CustomerEmailReceiptHasBeenRequested {
		return shared.NewIllegalState("a receipt has already been requested for transaction [%s]", t.ID)
	}

	t.CustomerEmailAddress = customerEmailAddress
	t.CustomerEmailReceiptHasBeenRequested = true
	t.touch()
	return nil
}

// RequestEmailReceiptResend resends a previously requested receipt
func (t *Transaction) RequestEmailReceiptResend() error {
	if !t.CustomerEmailReceiptHasBeenRequested {
		return shared.NewIllegalState("no receipt has been requested for transaction [%s]", t.ID)
	}

	t.ReceiptResendCount++
	t.touch()
	return nil
}

// RecordCostPrice stores the unit and total cost. Write-once, but not gated by
// decision or completion state; it may be called immediately after creation.
func (t *Transaction) RecordCostPrice(unitCost decimal.Decimal, totalCost decimal.Decimal) error {
	if t.UnitCost != nil || t.TotalCost != nil {
		return shared.NewIllegalState("cost price has already been recorded for transaction [%s]", t.ID)
	}

	t.UnitCost = &unitCost
	t.TotalCost = &totalCost
	t.touch()
	return nil
}
