package lookup

// Record is the provider-agnostic view of a BIN. Empty strings and nil
// pointers mean the answering provider did not supply the field.
type Record struct {
	BankName    string `json:"bank_name,omitempty"`
	BankURL     string `json:"bank_url,omitempty"`
	BankPhone   string `json:"bank_phone,omitempty"`
	CountryName string `json:"country_name,omitempty"`
	CountryFlag string `json:"country_flag,omitempty"`
	CardType    string `json:"card_type,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
	Category    string `json:"category,omitempty"`
	Level       string `json:"level,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Prepaid     *bool  `json:"prepaid,omitempty"`
	LuhnValid   *bool  `json:"luhn_valid,omitempty"`
}

// IsEmpty reports whether no field at all was supplied.
func (r Record) IsEmpty() bool {
	return r == Record{}
}

// Result is a successful lookup, tagged with the provider that answered.
type Result struct {
	BIN      BIN    `json:"bin"`
	Record   Record `json:"record"`
	Source   string `json:"source"`
	Attempts int    `json:"attempts"`
}
