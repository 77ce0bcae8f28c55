package merge

import "time"

// MergedPatient is the golden record, keyed by patient code rather than a
// generated id. Scalar demographics are partially updated on every merge
// run; the three sub-collections are reconciled by fingerprint diff.
type MergedPatient struct {
	PatientCode     string     `json:"patient_code" gorm:"primaryKey;column:patient_code"`
	PatientCPF      string     `json:"patient_cpf" gorm:"column:patient_cpf;index"`
	Name            string     `json:"name,omitempty" gorm:"column:name"`
	MotherName      string     `json:"mother_name,omitempty" gorm:"column:mother_name"`
	FatherName      string     `json:"father_name,omitempty" gorm:"column:father_name"`
	BirthDate       *time.Time `json:"birth_date,omitempty" gorm:"column:birth_date"`
	BirthCityCode   string     `json:"birth_city_code,omitempty" gorm:"column:birth_city_code"`
	GenderSlug      string     `json:"gender,omitempty" gorm:"column:gender_slug"`
	RaceSlug        string     `json:"race,omitempty" gorm:"column:race_slug"`
	NationalitySlug string     `json:"nationality,omitempty" gorm:"column:nationality_slug"`
	Deceased        *bool      `json:"deceased,omitempty" gorm:"column:deceased"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at;index"`
}

func (MergedPatient) TableName() string {
	return "merged_patients"
}

// MergedAddress is one reconciled address version. The fingerprint is the
// content-identity key; an unchanged address survives merge runs with its
// row id intact.
type MergedAddress struct {
	ID          string     `json:"id" gorm:"primaryKey;column:id"`
	PatientCode string     `json:"patient_code" gorm:"column:patient_code;uniqueIndex:idx_merged_address_patient_fp"`
	Fingerprint string     `json:"fingerprint" gorm:"column:fingerprint;uniqueIndex:idx_merged_address_patient_fp"`
	Use         string     `json:"use,omitempty" gorm:"column:use"`
	Type        string     `json:"type,omitempty" gorm:"column:type"`
	Line        string     `json:"line" gorm:"column:line"`
	Number      string     `json:"number,omitempty" gorm:"column:number"`
	Complement  string     `json:"complement,omitempty" gorm:"column:complement"`
	District    string     `json:"district,omitempty" gorm:"column:district"`
	CityCode    string     `json:"city_code,omitempty" gorm:"column:city_code"`
	StateCode   string     `json:"state_code,omitempty" gorm:"column:state_code"`
	PostalCode  string     `json:"postal_code,omitempty" gorm:"column:postal_code"`
	PeriodStart *time.Time `json:"period_start,omitempty" gorm:"column:period_start"`
	PeriodEnd   *time.Time `json:"period_end,omitempty" gorm:"column:period_end"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (MergedAddress) TableName() string {
	return "merged_patient_addresses"
}

type MergedTelecom struct {
	ID          string     `json:"id" gorm:"primaryKey;column:id"`
	PatientCode string     `json:"patient_code" gorm:"column:patient_code;uniqueIndex:idx_merged_telecom_patient_fp"`
	Fingerprint string     `json:"fingerprint" gorm:"column:fingerprint;uniqueIndex:idx_merged_telecom_patient_fp"`
	System      string     `json:"system" gorm:"column:system"`
	Value       string     `json:"value" gorm:"column:value"`
	Use         string     `json:"use,omitempty" gorm:"column:use"`
	Rank        int        `json:"rank,omitempty" gorm:"column:rank"`
	PeriodStart *time.Time `json:"period_start,omitempty" gorm:"column:period_start"`
	PeriodEnd   *time.Time `json:"period_end,omitempty" gorm:"column:period_end"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (MergedTelecom) TableName() string {
	return "merged_patient_telecoms"
}

// MergedHealthCard holds one CNS (national health card) number. The value is
// globally unique across all patients, enforced by the storage layer so two
// concurrent merges of different patients cannot both claim a number.
type MergedHealthCard struct {
	ID          string     `json:"id" gorm:"primaryKey;column:id"`
	PatientCode string     `json:"patient_code" gorm:"column:patient_code;uniqueIndex:idx_merged_cns_patient_fp"`
	Fingerprint string     `json:"fingerprint" gorm:"column:fingerprint;uniqueIndex:idx_merged_cns_patient_fp"`
	Value       string     `json:"value" gorm:"column:value;uniqueIndex:idx_merged_cns_value"`
	IsMain      bool       `json:"is_main" gorm:"column:is_main"`
	PeriodStart *time.Time `json:"period_start,omitempty" gorm:"column:period_start"`
	PeriodEnd   *time.Time `json:"period_end,omitempty" gorm:"column:period_end"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (MergedHealthCard) TableName() string {
	return "merged_patient_cns"
}

// PatientAggregate is the fully loaded golden record: the explicit
// repository read the reconciliation operates on, instead of lazy ORM
// navigation.
type PatientAggregate struct {
	Patient     MergedPatient      `json:"patient"`
	Addresses   []MergedAddress    `json:"addresses"`
	Telecoms    []MergedTelecom    `json:"telecoms"`
	HealthCards []MergedHealthCard `json:"health_cards"`
}
