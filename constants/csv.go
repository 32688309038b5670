package constants

// DetailHeaders is the column set of the per-invoice detail CSV.
var DetailHeaders = []string{
	"Page Number",
	"Invoice Number",
	"Item Code",
	"Description",
	"Country",
	"Quantity",
	"Unit Price",
	"Total Price",
	"Provisional Net Weight (kg)",
	"Final Net Weight (kg)",
	"Final Gross Weight (kg)",
	"Tariff Code",
	"Tariff Description",
}

// SummaryHeaders is the column set of the aggregated summary CSV / XLSX.
var SummaryHeaders = []string{
	"Tariff Code",
	"Country of Origin",
	"Total Gross Weight (kg)",
	"Total Net Weight (kg)",
	"Total Quantity",
	"Total Price",
}

// Reference data files use a semicolon delimiter and a comma decimal
// separator; these are the expected first lines.
var (
	WeightTableHeader = []string{"Registrační číslo", "JV Váha komplet SK"}
	TariffTableHeader = []string{"col_sadz", "Popis"}
)
