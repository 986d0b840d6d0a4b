package mappers

import (
	"sort"

	"course-feeds/internal/domain"
)

// providerName is the fixed organization behind every course in the feeds;
// it is never sourced from Airtable.
const providerName = "Karel de Grote Hogeschool"

const (
	jobatUTM = "utm_source=jobat&utm_medium=affiliate"

	// Versioned list-delimiter contract for the Jobat feed. Earlier feed
	// versions used "; "; do not share this with other assemblers.
	jobatDelimiter = ", "
)

// JobatCourse is the Jobat feed schema. Field order is the serialization
// order; treat this struct as the single source of truth for the Jobat
// contract and keep it independent from the Smartlions one.
type JobatCourse struct {
	InternalID      string `json:"internal_id"`
	Title           string `json:"title"`
	Language        string `json:"language"`
	Price           string `json:"price"`
	CertificateName string `json:"certificate_name"`
	CourseImage     string `json:"course_image"`
	Email           string `json:"email"`

	JobTitle          string `json:"job_title"`
	Skills            string `json:"skills"`
	Audience          string `json:"audience"`
	DomainCategory    string `json:"domain_category"`
	DomainSubcategory string `json:"domain_subcategory"`

	Webaddress     string `json:"webaddress"`
	DegreeType     int    `json:"degree_type"`
	DurationLength string `json:"duration_length"`
	DurationType   string `json:"duration_type"`
	Provider       string `json:"provider"`
	CourseType     int    `json:"course_type"`

	Description          string `json:"description"`
	DescriptionProgram   string `json:"description_program"`
	DescriptionExtrainfo string `json:"description_extrainfo"`

	JobFunctionCategory int    `json:"job_function_category"`
	EscoCategoryCode    int    `json:"esco_category_code"`
	NacebelSector       string `json:"nacebel_sector"`
	RequiredKnowledge   string `json:"required_knowledge"`
	GovernmentSubsidy   string `json:"government_subsidy"`

	LocationAndDate []LocationDate `json:"location_and_date"`
}

// BuildJobatFeed joins sessions under their courses (implicit internal_id
// strategy), assembles one record per course and sorts the feed by
// internal_id for stable diffs.
func BuildJobatFeed(courses, sessions []domain.Record) []JobatCourse {
	joined := JoinSessions(courses, sessions, JoinOptions{
		DeadlineDayMonthYear: true,
	})

	out := make([]JobatCourse, 0, len(courses))
	for _, cr := range courses {
		out = append(out, buildJobatCourse(cr, joined))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InternalID < out[j].InternalID
	})
	return out
}

func buildJobatCourse(cr domain.Record, joined JoinedSessions) JobatCourse {
	f := cr.Fields
	iid := f.Str("internal_id")

	locations := joined.Locations[iid]
	if locations == nil {
		locations = []LocationDate{}
	}

	return JobatCourse{
		InternalID:      iid,
		Title:           f.Str("title"),
		Language:        f.Str("language"),
		Price:           formatPrice(f.Str("price")),
		CertificateName: f.Str("certificate_name"),
		CourseImage:     f.Str("course_image"),
		Email:           f.Str("email"),

		JobTitle:          f.Str("job_title"),
		Skills:            skillsString(f, jobatDelimiter),
		Audience:          f.Str("audience"),
		DomainCategory:    f.Str("domain_category"),
		DomainSubcategory: f.Str("domain_subcategory"),

		Webaddress:     addUTM(f.Str("webaddress"), jobatUTM),
		DegreeType:     f.Int("degree_type", 0),
		DurationLength: formatDuration(f.Str("duration_length")),
		DurationType:   f.Str("duration_type"),
		Provider:       providerName,
		CourseType:     f.Int("course_type", 0),

		Description:          cdata(f.Str("description_html")),
		DescriptionProgram:   cdata(f.Str("description_program_html")),
		DescriptionExtrainfo: cdata(f.Str("description_extrainfo_html")),

		JobFunctionCategory: f.Int("job_function_category", 0),
		EscoCategoryCode:    f.Int("esco_category_code", 0),
		NacebelSector:       f.Str("nacebel_sector"),
		RequiredKnowledge:   f.Str("required_knowledge"),
		GovernmentSubsidy:   subsidyString(f, jobatDelimiter),

		LocationAndDate: locations,
	}
}
