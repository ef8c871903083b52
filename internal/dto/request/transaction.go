package request

const DateLayout = "2006-01-02"

type TransactionRequest struct {
	CategoryID  string  `json:"categoryId" validate:"required,uuid"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=ingreso gasto"`
	Description string  `json:"description" validate:"max=255"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// TransactionFilterRequest is read from the query string. Type "todas" means no filter.
type TransactionFilterRequest struct {
	Type       string `validate:"omitempty,oneof=ingreso gasto todas"`
	CategoryID string `validate:"omitempty,uuid"`
	StartDate  string `validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `validate:"omitempty,datetime=2006-01-02"`
}

type PeriodRequest struct {
	Period string `validate:"omitempty,oneof=week month year"`
}
