package domain

// TransactionBatch is the parsed content of a transactions table.
type TransactionBatch struct {
	Source       string
	Rows         int // data rows read, valid or not
	Transactions []Transaction
	Rejected     []*ValidationError
}

// RuleBatch is the parsed content of a rulebook.
type RuleBatch struct {
	Source   string
	Rows     int
	Rules    []CommissionRule
	Rejected []*ValidationError
}
