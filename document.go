package txnimport

// Canonical field names of a Document, as they appear in the index.
const (
	FieldTransactionID    = "transaction_id"
	FieldCustomerID       = "customer_id"
	FieldAmount           = "amount"
	FieldMerchantCategory = "merchant_category"
	FieldTimestamp        = "timestamp"
	FieldHour             = "hour"
	FieldDayOfWeek        = "day_of_week"
	FieldIsFraud          = "is_fraud"
	FieldLocation         = "location"
	FieldMerchantName     = "merchant_name"
	FieldAccountBalance   = "account_balance"
	FieldPreviousAmount   = "previous_amount"
)

// Document is a normalized transaction ready for indexing. The optional
// fields are nil when the source row held no usable value for them, and are
// then left out of the encoded document.
type Document struct {
	TransactionID    string  `json:"transaction_id"`
	CustomerID       string  `json:"customer_id"`
	Amount           float64 `json:"amount"`
	MerchantCategory string  `json:"merchant_category"`
	Timestamp        string  `json:"timestamp"`
	Hour             int     `json:"hour"`
	DayOfWeek        int     `json:"day_of_week"`
	IsFraud          bool    `json:"is_fraud"`

	Location       *string  `json:"location,omitempty"`
	MerchantName   *string  `json:"merchant_name,omitempty"`
	AccountBalance *float64 `json:"account_balance,omitempty"`
	PreviousAmount *float64 `json:"previous_amount,omitempty"`
}
