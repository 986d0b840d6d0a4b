package mappers

import (
	"sort"
	"strings"

	"course-feeds/internal/domain"
)

const (
	smartlionsUTM = "utm_source=smartlions&utm_medium=affiliate"

	// Versioned list-delimiter contract for the Smartlions feed.
	smartlionsDelimiter = ", "
)

// SmartlionsCourse is the Smartlions feed schema. It deliberately diverges
// from the Jobat one: numeric-or-null price, string esco code, uppercased
// language, raw (non-CDATA) descriptions and a derived sessions array.
type SmartlionsCourse struct {
	InternalID string `json:"internal_id"`
	Title      string `json:"title"`
	Language   string `json:"language"`
	Webaddress string `json:"webaddress"`
	Provider   string `json:"provider"`

	CourseType int `json:"course_type"`
	DegreeType int `json:"degree_type"`

	JobTitle            string `json:"job_title"`
	JobFunctionCategory int    `json:"job_function_category"`
	EscoCategoryCode    string `json:"esco_category_code"`
	NacebelSector       string `json:"nacebel_sector"`

	Price             *float64 `json:"price"`
	GovernmentSubsidy string   `json:"government_subsidy"`

	Skills            string `json:"skills"`
	Audience          string `json:"audience"`
	RequiredKnowledge string `json:"required_knowledge"`

	CertificateName string `json:"certificate_name"`
	Email           string `json:"email"`
	CourseImage     string `json:"course_image"`

	DurationLength string `json:"duration_length"`
	DurationType   string `json:"duration_type"`

	Description          string `json:"description"`
	DescriptionProgram   string `json:"description_program"`
	DescriptionExtrainfo string `json:"description_extrainfo"`

	LocationAndDate []LocationDate `json:"location_and_date"`
	Sessions        []SessionEvent `json:"sessions"`
}

// BuildSmartlionsFeed joins sessions under their courses through the
// explicit course link field, assembles one record per course and sorts the
// feed by internal_id for stable diffs.
func BuildSmartlionsFeed(courses, sessions []domain.Record, linkField string) []SmartlionsCourse {
	joined := JoinSessions(courses, sessions, JoinOptions{
		LinkField:  linkField,
		WithEvents: true,
	})

	out := make([]SmartlionsCourse, 0, len(courses))
	for _, cr := range courses {
		out = append(out, buildSmartlionsCourse(cr, joined))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InternalID < out[j].InternalID
	})
	return out
}

func buildSmartlionsCourse(cr domain.Record, joined JoinedSessions) SmartlionsCourse {
	f := cr.Fields
	iid := f.Str("internal_id")

	locations := joined.Locations[iid]
	if locations == nil {
		locations = []LocationDate{}
	}
	events := joined.Events[iid]
	if events == nil {
		events = []SessionEvent{}
	}

	return SmartlionsCourse{
		InternalID: iid,
		Title:      f.Str("title"),
		Language:   strings.ToUpper(f.Str("language")),
		Webaddress: addUTM(f.Str("webaddress"), smartlionsUTM),
		Provider:   providerName,

		CourseType: f.Int("course_type", 0),
		DegreeType: f.Int("degree_type", 0),

		JobTitle:            f.Str("job_title"),
		JobFunctionCategory: f.Int("job_function_category", 0),
		EscoCategoryCode:    f.Str("esco_category_code"),
		NacebelSector:       f.Str("nacebel_sector"),

		Price:             f.Float("price"),
		GovernmentSubsidy: subsidyString(f, smartlionsDelimiter),

		Skills:            skillsString(f, smartlionsDelimiter),
		Audience:          f.Str("audience"),
		RequiredKnowledge: f.Str("required_knowledge"),

		CertificateName: f.Str("certificate_name"),
		Email:           f.Str("email"),
		CourseImage:     f.Str("course_image"),

		DurationLength: formatDuration(f.Str("duration_length")),
		DurationType:   f.Str("duration_type"),

		Description:          f.Str("description_html"),
		DescriptionProgram:   f.Str("description_program_html"),
		DescriptionExtrainfo: f.Str("description_extrainfo_html"),

		LocationAndDate: locations,
		Sessions:        events,
	}
}
