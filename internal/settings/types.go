package settings

// CompanyProfile is the business identity printed on invoices, keyed by
// account.
type CompanyProfile struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	GSTIN          string `json:"gstin"`
	PAN            string `json:"pan"`
	Website        string `json:"website"`
	BankName       string `json:"bankName"`
	AccountNumber  string `json:"accountNumber"`
	IFSCCode       string `json:"ifscCode"`
	UPIID          string `json:"upiId"`
	AdditionalInfo string `json:"additionalInfo"`
}

// Printer types and paper sizes.
const (
	PrinterThermal = "thermal"
	PrinterLaser   = "laser"

	Paper3Inch = "3inch"
	Paper4Inch = "4inch"
	PaperA4    = "A4"
	PaperA5    = "A5"

	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

// FieldVisibility enumerates every optional invoice field with an
// explicit per-field flag. Rendering checks each flag exhaustively.
type FieldVisibility struct {
	CompanyName        bool `json:"companyName"`
	CompanyAddress     bool `json:"companyAddress"`
	PhoneNumber        bool `json:"phoneNumber"`
	Email              bool `json:"email"`
	GSTNumber          bool `json:"gstNumber"`
	InvoiceTitle       bool `json:"invoiceTitle"`
	InvoiceNumber      bool `json:"invoiceNumber"`
	InvoiceDate        bool `json:"invoiceDate"`
	ClientName         bool `json:"clientName"`
	ItemQuantity       bool `json:"itemQuantity"`
	ItemRate           bool `json:"itemRate"`
	ItemAmount         bool `json:"itemAmount"`
	Subtotal           bool `json:"subtotal"`
	Discount           bool `json:"discount"`
	Total              bool `json:"total"`
	SavedAmount        bool `json:"savedAmount"`
	SeparatorLines     bool `json:"separatorLines"`
	BarcodeQR          bool `json:"barcodeQR"`
	PaymentMode        bool `json:"paymentMode"`
	TermsAndConditions bool `json:"termsAndConditions"`
	CustomNotes        bool `json:"customNotes"`
	ThankYouMessage    bool `json:"thankYouMessage"`
}

// CustomContent holds the free-text blocks appended to printed invoices.
type CustomContent struct {
	ThankYouMessage    string `json:"thankYouMessage"`
	TermsAndConditions string `json:"termsAndConditions"`
	CustomNotes        string `json:"customNotes"`
}

// PrinterSettings controls how invoices are rendered for printing.
type PrinterSettings struct {
	PrinterType   string          `json:"printerType" validate:"omitempty,oneof=thermal laser"`
	PaperSize     string          `json:"paperSize"`
	FontSize      string          `json:"fontSize" validate:"omitempty,oneof=small medium large"`
	InvoiceFields FieldVisibility `json:"invoiceFields"`
	CustomContent CustomContent   `json:"customContent"`
}

// DefaultPrinterSettings returns the baseline configuration: thermal
// 3-inch paper, medium font, every field visible.
func DefaultPrinterSettings() PrinterSettings {
	return PrinterSettings{
		PrinterType: PrinterThermal,
		PaperSize:   Paper3Inch,
		FontSize:    FontMedium,
		InvoiceFields: FieldVisibility{
			CompanyName:        true,
			CompanyAddress:     true,
			PhoneNumber:        true,
			Email:              true,
			GSTNumber:          true,
			InvoiceTitle:       true,
			InvoiceNumber:      true,
			InvoiceDate:        true,
			ClientName:         true,
			ItemQuantity:       true,
			ItemRate:           true,
			ItemAmount:         true,
			Subtotal:           true,
			Discount:           true,
			Total:              true,
			SavedAmount:        true,
			SeparatorLines:     true,
			BarcodeQR:          true,
			PaymentMode:        true,
			TermsAndConditions: true,
			CustomNotes:        true,
			ThankYouMessage:    true,
		},
		CustomContent: CustomContent{
			ThankYouMessage:    "Thank you for your business!",
			TermsAndConditions: "1. All sales are final\n2. Returns accepted within 7 days\n3. Please keep your bill for warranty",
			CustomNotes:        "",
		},
	}
}

// Normalize clamps the paper size to the printer type's valid options.
func (p *PrinterSettings) Normalize() {
	switch p.PrinterType {
	case PrinterLaser:
		if p.PaperSize != PaperA4 && p.PaperSize != PaperA5 {
			p.PaperSize = PaperA4
		}
	default:
		p.PrinterType = PrinterThermal
		if p.PaperSize != Paper3Inch && p.PaperSize != Paper4Inch {
			p.PaperSize = Paper3Inch
		}
	}
	switch p.FontSize {
	case FontSmall, FontMedium, FontLarge:
	default:
		p.FontSize = FontMedium
	}
}
