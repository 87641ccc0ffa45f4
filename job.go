package joblens

// Unknown is the sentinel value for job data fields that could not be
// extracted. Fields default to Unknown rather than being absent so that
// consumers can tell "not found" apart from "not yet computed".
const Unknown = "unknown"

// Field identifies a single extractable job data field.
type Field string

// Fields of ExtractedJobData that are delivered progressively.
const (
	FieldCompany        Field = "company"
	FieldPosition       Field = "position"
	FieldJobDescription Field = "jobDescription"
	FieldSalary         Field = "salary"
	FieldLocation       Field = "location"
	FieldJobType        Field = "jobType"
	FieldRequirements   Field = "requirements"
	FieldBenefits       Field = "benefits"
)

// ExtractedJobData holds the structured result of one extraction run.
// It is produced once per successful run and must not be mutated afterwards.
type ExtractedJobData struct {
	Company        string   `json:"company"`
	Position       string   `json:"position"`
	JobDescription string   `json:"jobDescription"`
	Salary         string   `json:"salary"`
	Location       string   `json:"location"`
	JobType        string   `json:"jobType"`
	Requirements   []string `json:"requirements,omitempty"`
	Benefits       []string `json:"benefits,omitempty"`
}

// NewExtractedJobData returns a result with every string field set to the
// Unknown sentinel.
func NewExtractedJobData() *ExtractedJobData {
	return &ExtractedJobData{
		Company:        Unknown,
		Position:       Unknown,
		JobDescription: Unknown,
		Salary:         Unknown,
		Location:       Unknown,
		JobType:        Unknown,
	}
}

// Known reports whether a field value carries real extracted data.
func Known(value string) bool {
	return value != "" && value != Unknown
}

// FieldValues returns the scalar fields that carry real data.
// Used to replay cached results through a progressive callback.
func (d *ExtractedJobData) FieldValues() map[Field]string {
	values := make(map[Field]string)
	for field, value := range map[Field]string{
		FieldCompany:        d.Company,
		FieldPosition:       d.Position,
		FieldJobDescription: d.JobDescription,
		FieldSalary:         d.Salary,
		FieldLocation:       d.Location,
		FieldJobType:        d.JobType,
	} {
		if Known(value) {
			values[field] = value
		}
	}
	return values
}
