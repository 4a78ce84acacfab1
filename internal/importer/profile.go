package importer

import "strings"

// Profile describes the header names of one invoice export layout.
// Number, Amount and Date are required; the rest are optional.
type Profile struct {
	Name        string
	NumberCol   string
	AmountCol   string
	DateCol     string
	SupplierCol string
	StatusCol   string
	DueCol      string
	DescCol     string
}

func (p Profile) requiredCols() []string {
	return []string{p.NumberCol, p.AmountCol, p.DateCol}
}

// profiles is the ordered list of layouts tried during header detection.
var profiles = []Profile{
	{
		Name:        "en",
		NumberCol:   "number",
		AmountCol:   "amount",
		DateCol:     "date",
		SupplierCol: "supplier",
		StatusCol:   "status",
		DueCol:      "due date",
		DescCol:     "description",
	},
	{
		Name:        "ru",
		NumberCol:   "номер",
		AmountCol:   "сумма",
		DateCol:     "дата",
		SupplierCol: "поставщик",
		StatusCol:   "статус",
		DueCol:      "срок оплаты",
		DescCol:     "описание",
	},
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
