package scraper

import (
	"testing"

	"github.com/justsurfingit/job-finder/internal/models"
)

const fullPane = `<div class="jobsearch-JobComponent">
  <h2 data-testid="jobsearch-JobInfoHeader-title">
    <span>Senior Backend Developer<span class="css-1b6omqv">- job post</span></span>
  </h2>
  <div data-testid="inlineHeader-companyName">
    <span><a href="/cmp/systems">Systems Limited<svg aria-label="(opens in a new tab)"><path d="M0"></path></svg></a></span>
  </div>
  <div id="jobDescriptionText">
    <p>We build payment platforms.</p>
    <p>Salary: Rs 200,000 - Rs 300,000 per month</p>
    <p>Job Type: Full-time, Permanent</p>
    <ul>
      <li>Go</li>
      <li>Backend development: 4 years (Required)</li>
    </ul>
  </div>
</div>`

func TestParseDetail_AllFields(t *testing.T) {
	pane := Pane{
		HTML: fullPane,
		Text: "Senior Backend Developer\nSystems Limited\nWork Location: In person",
		URL:  "https://pk.indeed.com/jobs?q=backend&vjk=abc123",
	}

	got := ParseDetail(pane, 4, "Lahore")

	want := models.JobListing{
		ID:                 4,
		Title:              "Senior Backend Developer",
		Company:            "Systems Limited",
		Location:           "Lahore",
		Salary:             "Salary: Rs 200,000 - Rs 300,000 per month",
		JobType:            "Full-time, Permanent",
		ExperienceRequired: "Backend development: 4 years (Required)",
		JobNature:          "On-site",
		ApplyLink:          "https://pk.indeed.com/jobs?q=backend&vjk=abc123",
		Description:        "Senior Backend Developer\nSystems Limited\nWork Location: In person",
	}
	if got != want {
		t.Errorf("ParseDetail mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestParseDetail_CompanyFallbackSelector(t *testing.T) {
	html := `<div><div data-company-name="true"><a>Arbisoft</a></div></div>`
	got := ParseDetail(Pane{HTML: html, Text: "x"}, 1, "Lahore")
	if got.Company != "Arbisoft" {
		t.Errorf("Company = %q, want Arbisoft", got.Company)
	}
}

func TestParseDetail_PKRSalary(t *testing.T) {
	html := `<div><p>Pay: PKR 90,000</p><p>Rs 1 later</p></div>`
	got := ParseDetail(Pane{HTML: html, Text: "x"}, 1, "Lahore")
	if got.Salary != "Pay: PKR 90,000" {
		t.Errorf("Salary = %q", got.Salary)
	}
}

func TestParseDetail_MissingEverythingUsesSentinel(t *testing.T) {
	got := ParseDetail(Pane{HTML: `<div class="jobsearch-JobComponent"></div>`}, 2, "")

	for name, v := range map[string]string{
		"title":       got.Title,
		"company":     got.Company,
		"location":    got.Location,
		"salary":      got.Salary,
		"jobType":     got.JobType,
		"experience":  got.ExperienceRequired,
		"jobNature":   got.JobNature,
		"applyLink":   got.ApplyLink,
		"description": got.Description,
	} {
		if v != models.NotSpecified {
			t.Errorf("%s = %q, want sentinel", name, v)
		}
	}
	if got.ID != 2 {
		t.Errorf("ID = %d, want 2", got.ID)
	}
}

func TestParseDetail_RemoteIsNotOnSite(t *testing.T) {
	got := ParseDetail(Pane{HTML: fullPane, Text: "Work Location: Remote"}, 1, "Lahore")
	if got.JobNature != models.NotSpecified {
		t.Errorf("JobNature = %q, want sentinel", got.JobNature)
	}
}

func TestParseDetail_DescriptionFallsBackToMarkupText(t *testing.T) {
	got := ParseDetail(Pane{HTML: `<div><p>Build   services</p></div>`}, 1, "Lahore")
	if got.Description != "Build services" {
		t.Errorf("Description = %q", got.Description)
	}
}
