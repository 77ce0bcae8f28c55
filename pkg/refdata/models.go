package refdata

// Reference data is immutable lookup material: the city/state/country
// hierarchy, demographic category tables resolved by slug, and the CID/CIAP
// condition-code table.

type Country struct {
	Code string `json:"code" gorm:"primaryKey;column:code"`
	Name string `json:"name" gorm:"column:name"`
}

func (Country) TableName() string {
	return "countries"
}

type State struct {
	Code        string `json:"code" gorm:"primaryKey;column:code"`
	Name        string `json:"name" gorm:"column:name"`
	CountryCode string `json:"country_code" gorm:"column:country_code;index"`
}

func (State) TableName() string {
	return "states"
}

type City struct {
	Code      string `json:"code" gorm:"primaryKey;column:code"`
	Name      string `json:"name" gorm:"column:name"`
	StateCode string `json:"state_code" gorm:"column:state_code;index"`
}

func (City) TableName() string {
	return "cities"
}

type Gender struct {
	Slug string `json:"slug" gorm:"primaryKey;column:slug"`
	Name string `json:"name" gorm:"column:name"`
}

func (Gender) TableName() string {
	return "genders"
}

type Race struct {
	Slug string `json:"slug" gorm:"primaryKey;column:slug"`
	Name string `json:"name" gorm:"column:name"`
}

func (Race) TableName() string {
	return "races"
}

type Nationality struct {
	Slug string `json:"slug" gorm:"primaryKey;column:slug"`
	Name string `json:"name" gorm:"column:name"`
}

func (Nationality) TableName() string {
	return "nationalities"
}

const (
	CodeTypeCID  = "cid"
	CodeTypeCIAP = "ciap"
)

type ConditionCode struct {
	ID          string `json:"id" gorm:"primaryKey;column:id"`
	Type        string `json:"type" gorm:"column:type;uniqueIndex:idx_condition_code_type_value"`
	Value       string `json:"value" gorm:"column:value;uniqueIndex:idx_condition_code_type_value"`
	Description string `json:"description" gorm:"column:description"`
}

func (ConditionCode) TableName() string {
	return "condition_codes"
}
