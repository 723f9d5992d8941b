package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID                  string          `json:"id"`
	Amount              decimal.Decimal `json:"amount"`
	PaymentChannel      string          `json:"payment_channel"`
	DeviceType          string          `json:"device_type"`
	TransactionTime     time.Time       `json:"transaction_time"`
	Location            string          `json:"location"`
	HighValueTxCount    int             `json:"high_value_tx_count"`
	AccountCreationDate time.Time       `json:"account_creation_date"`
	IsVerified          bool            `json:"is_verified"`
}

// Field names as they appear in JSON bodies and table headers.
const (
	FieldID                  = "id"
	FieldAmount              = "amount"
	FieldPaymentChannel      = "payment_channel"
	FieldDeviceType          = "device_type"
	FieldTransactionTime     = "transaction_time"
	FieldLocation            = "location"
	FieldHighValueTxCount    = "high_value_tx_count"
	FieldAccountCreationDate = "account_creation_date"
	FieldIsVerified          = "is_verified"
)

var TransactionFields = []string{
	FieldID,
	FieldAmount,
	FieldPaymentChannel,
	FieldDeviceType,
	FieldTransactionTime,
	FieldLocation,
	FieldHighValueTxCount,
	FieldAccountCreationDate,
	FieldIsVerified,
}

func (tx Transaction) Weekday() string {
	return tx.TransactionTime.Weekday().String()
}
