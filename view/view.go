package view

import (
	"embed"
	"html/template"
	"path/filepath"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/billed.js
var billedJS []byte

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// StaticJS returns the page script served at /static/billed.js.
func StaticJS() []byte {
	return billedJS
}

// BillRow is the view-model for one line of the bills table. RawDate
// keeps the store's ISO value for sorting; Date is the display form.
type BillRow struct {
	Type     string
	Name     string
	Date     string
	RawDate  string
	Amount   float64
	Status   string
	FileURL  string
	FileName string
}

// BillsData feeds the bills page template.
type BillsData struct {
	Rows             []BillRow
	Error            string
	NewBillPath      string
	JustificatifPath string
}

// NewBillData feeds the creation form template.
type NewBillData struct {
	SubmitPath string
	StagePath  string
}

// LoginData feeds the login page template.
type LoginData struct {
	LoginPath string
	Error     string
}

// BillsUI renders the bills page
func BillsUI(data BillsData) string {
	return render("bills.tmpl", data)
}

// NewBillUI renders the bill creation page
func NewBillUI(data NewBillData) string {
	return render("new_bill.tmpl", data)
}

// LoginUI renders the login page
func LoginUI(data LoginData) string {
	return render("login.tmpl", data)
}

// ErrorUI renders the full-page error view
func ErrorUI(message string) string {
	return render("error.tmpl", struct{ Message string }{message})
}

// JustificatifUI renders the receipt preview modal fragment. IsImage
// selects between the embedded image and the fallback placeholder.
func JustificatifUI(fileURL string) string {
	return render("justificatif.tmpl", struct {
		FileURL string
		IsImage bool
	}{fileURL, isImageURL(fileURL)})
}

// isImageURL reports whether the URL plausibly points at an image the
// modal can embed.
func isImageURL(fileURL string) bool {
	if fileURL == "" {
		return false
	}
	path := fileURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

// render executes a parsed template. Templates are static and embedded;
// a failure here is a deployment defect, so fail loudly.
func render(name string, data any) string {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		panic(err)
	}
	return sb.String()
}
