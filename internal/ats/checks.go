package ats

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// SupportedFormats are the document types applicant tracking systems read
// reliably.
var SupportedFormats = []string{".pdf", ".docx", ".txt"}

// FormatCheck rates the document type a resume was submitted as.
type FormatCheck struct {
	IsCompatible bool    `json:"is_compatible"`
	FileType     string  `json:"file_type"`
	Message      string  `json:"message"`
	Score        float64 `json:"score"`
}

// SectionCheck lists the standard sections found in a resume.
type SectionCheck struct {
	Detected []string `json:"detected"`
	Missing  []string `json:"missing"`
	Score    float64  `json:"score"`
	Message  string   `json:"message"`
}

// KeywordCheck measures how many job description keywords a resume uses.
type KeywordCheck struct {
	MatchPercentage  float64  `json:"match_percentage"`
	MatchedKeywords  []string `json:"matched_keywords"`
	MissingKeywords  []string `json:"missing_keywords"`
	TotalJobKeywords int      `json:"total_job_keywords"`
	TotalMatched     int      `json:"total_matched"`
	Score            float64  `json:"score"`
}

// FormattingCheck lists layout problems that confuse parsers.
type FormattingCheck struct {
	Issues    []string `json:"issues"`
	Warnings  []string `json:"warnings"`
	Score     float64  `json:"score"`
	WordCount int      `json:"word_count"`
	Message   string   `json:"message"`
}

var sectionPatterns = []struct {
	name string
	re   *regexp2.Regexp
}{
	{"Contact", regexp2.MustCompile(`email|phone|address|linkedin`, regexp2.IgnoreCase)},
	{"Summary", regexp2.MustCompile(`summary|objective|profile`, regexp2.IgnoreCase)},
	{"Experience", regexp2.MustCompile(`experience|work history|employment`, regexp2.IgnoreCase)},
	{"Education", regexp2.MustCompile(`education|degree|university|college`, regexp2.IgnoreCase)},
	{"Skills", regexp2.MustCompile(`skills|technical skills|competencies`, regexp2.IgnoreCase)},
	{"Certifications", regexp2.MustCompile(`certification|certificate|licensed`, regexp2.IgnoreCase)},
	{"Projects", regexp2.MustCompile(`projects|portfolio`, regexp2.IgnoreCase)},
}

var (
	keywordRe     = regexp2.MustCompile(`\b[a-zA-Z]{3,}\b`, regexp2.None)
	specialCharRe = regexp2.MustCompile(`[^\w\s\-.,()@:/]`, regexp2.None)
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true, "that": true,
	"from": true, "have": true, "will": true, "are": true, "was": true, "were": true,
}

// maxKeywordsListed caps the matched and missing keyword lists.
const maxKeywordsListed = 20

// CheckFormat rates a file name's extension. Only the name is inspected.
func CheckFormat(filename string) FormatCheck {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range SupportedFormats {
		if ext == f {
			return FormatCheck{IsCompatible: true, FileType: ext, Message: "ATS-compatible format", Score: 100}
		}
	}
	return FormatCheck{
		FileType: ext,
		Message:  fmt.Sprintf("Format %s may not be ATS-compatible. Use PDF or DOCX.", ext),
		Score:    30,
	}
}

// DetectSections reports which standard sections a resume mentions.
func DetectSections(text string) SectionCheck {
	check := SectionCheck{Detected: []string{}, Missing: []string{}}
	for _, s := range sectionPatterns {
		if ok, err := s.re.MatchString(text); err == nil && ok {
			check.Detected = append(check.Detected, s.name)
		} else {
			check.Missing = append(check.Missing, s.name)
		}
	}
	total := len(sectionPatterns)
	check.Score = round1(float64(len(check.Detected)) / float64(total) * 100)
	check.Message = fmt.Sprintf("Found %d/%d standard sections", len(check.Detected), total)
	return check
}

// MatchKeywords compares the words of a job description with a resume's.
func MatchKeywords(resumeText, jobDescription string) KeywordCheck {
	job := keywords(jobDescription)
	resume := keywords(resumeText)

	matched := make([]string, 0, len(job))
	missing := make([]string, 0, len(job))
	for w := range job {
		if resume[w] {
			matched = append(matched, w)
		} else {
			missing = append(missing, w)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	var pct float64
	if len(job) > 0 {
		pct = round1(float64(len(matched)) / float64(len(job)) * 100)
	}
	return KeywordCheck{
		MatchPercentage:  pct,
		MatchedKeywords:  head(matched, maxKeywordsListed),
		MissingKeywords:  head(missing, maxKeywordsListed),
		TotalJobKeywords: len(job),
		TotalMatched:     len(matched),
		Score:            pct,
	}
}

// CheckFormatting looks for layout problems in extracted resume text.
func CheckFormatting(text string) FormattingCheck {
	check := FormattingCheck{Issues: []string{}, Warnings: []string{}}

	if len(findAll(specialCharRe, text)) > 10 {
		check.Issues = append(check.Issues, "Contains many special characters that may confuse ATS")
	}
	if strings.ContainsAny(text, "\t|") {
		check.Warnings = append(check.Warnings, "May contain tables - consider using simple bullet points")
	}
	lower := strings.ToLower(text)
	for _, indicator := range []string{"image", "picture", "graphic", "chart"} {
		if strings.Contains(lower, indicator) {
			check.Issues = append(check.Issues, "May contain embedded images - ATS cannot read images")
			break
		}
	}
	if strings.Count(text, "\n") < 5 {
		check.Warnings = append(check.Warnings, "Very few line breaks - formatting may be complex")
	}

	check.WordCount = len(strings.Fields(text))
	switch {
	case check.WordCount < 100:
		check.Issues = append(check.Issues, "Resume seems too short")
	case check.WordCount > 1000:
		check.Warnings = append(check.Warnings, "Resume is quite long - consider condensing")
	}

	check.Score = float64(max(0, 100-len(check.Issues)*20-len(check.Warnings)*10))
	check.Message = "Formatting needs improvement"
	if check.Score > 70 {
		check.Message = "Good formatting"
	}
	return check
}

func keywords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range findAll(keywordRe, strings.ToLower(text)) {
		if !stopWords[w] {
			out[w] = true
		}
	}
	return out
}

func findAll(re *regexp2.Regexp, text string) []string {
	var out []string
	m, err := re.FindStringMatch(text)
	for err == nil && m != nil {
		out = append(out, m.String())
		m, err = re.FindNextMatch(m)
	}
	return out
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
