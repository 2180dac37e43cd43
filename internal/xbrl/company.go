package xbrl

import "strings"

// Company provides information about a filer.
type Company interface {
	CompanyName() string
	CompanyNumber() string
	IncorporationState() string
	LocationState() string
	SICCode() string
	SICDescription() string
	TradingSymbol() string
}

// SIC renders "code description".
func SIC(c Company) string {
	return c.SICCode() + " " + c.SICDescription()
}

// FolderName is the company number without leading zeros, as used for
// filing archive folders ("0000320193" → "320193").
func FolderName(c Company) string {
	n := strings.TrimLeft(c.CompanyNumber(), "0")
	if n == "" && c.CompanyNumber() != "" {
		return "0"
	}
	return n
}

// StaticCompany is a Company backed by fixed fields (e.g. from config).
type StaticCompany struct {
	Name          string `yaml:"name"`
	Number        string `yaml:"number"`
	Incorporation string `yaml:"incorporation"`
	Location      string `yaml:"location"`
	SICCodeValue  string `yaml:"sic_code"`
	SICDesc       string `yaml:"sic_description"`
	Symbol        string `yaml:"trading_symbol"`
}

func (c StaticCompany) CompanyName() string        { return c.Name }
func (c StaticCompany) CompanyNumber() string      { return c.Number }
func (c StaticCompany) IncorporationState() string { return c.Incorporation }
func (c StaticCompany) LocationState() string      { return c.Location }
func (c StaticCompany) SICCode() string            { return c.SICCodeValue }
func (c StaticCompany) SICDescription() string     { return c.SICDesc }
func (c StaticCompany) TradingSymbol() string      { return c.Symbol }

// NoCompany is the zero Company.
type NoCompany struct{}

func (NoCompany) CompanyName() string        { return "" }
func (NoCompany) CompanyNumber() string      { return "" }
func (NoCompany) IncorporationState() string { return "" }
func (NoCompany) LocationState() string      { return "" }
func (NoCompany) SICCode() string            { return "" }
func (NoCompany) SICDescription() string     { return "" }
func (NoCompany) TradingSymbol() string      { return "" }
