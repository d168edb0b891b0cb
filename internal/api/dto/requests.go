package dto

import "github.com/shopspring/decimal"

// BankTransactionRequest is one bank statement record from the ingestion
// collaborator. Date, amount and description are nullable: statement
// parsing can degrade and the engine handles unknown fields explicitly.
type BankTransactionRequest struct {
	ID          string           `json:"id"`
	Date        *string          `json:"date"` // ISO date (YYYY-MM-DD) or null
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
}

// IngestBankRequest is the batch ingest payload for bank transactions.
type IngestBankRequest struct {
	Transactions []BankTransactionRequest `json:"transactions"`
}

// LedgerEntryRequest is one receipt/invoice record. All fields except
// category are required.
type LedgerEntryRequest struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"` // ISO date (YYYY-MM-DD)
	Amount   decimal.Decimal `json:"amount"`
	Vendor   string          `json:"vendor"`
	Category string          `json:"category,omitempty"`
}

// IngestLedgerRequest is the batch ingest payload for ledger entries.
type IngestLedgerRequest struct {
	Entries []LedgerEntryRequest `json:"entries"`
}
