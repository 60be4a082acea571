package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/justsurfingit/job-finder/internal/client"
	"github.com/justsurfingit/job-finder/internal/models"
)

const barTemplate = `{{ string . "step" | green }} {{ bar . "[" "=" ">" " " "]" }} {{ percent . }}`

func main() {
	var (
		server     = flag.String("server", "http://127.0.0.1:8000", "job finder API base URL")
		position   = flag.String("position", "", "job title to search for (required)")
		location   = flag.String("location", "", "city or region (required)")
		experience = flag.String("experience", "", "years of experience")
		salary     = flag.String("salary", "", "expected salary")
		nature     = flag.String("nature", "", "onsite, remote or hybrid")
		skills     = flag.String("skills", "", "comma separated skills")
		interval   = flag.Duration("interval", 500*time.Millisecond, "status poll interval")
	)
	flag.Parse()

	criteria := models.SearchCriteria{
		Position:   *position,
		Location:   *location,
		Experience: *experience,
		Salary:     *salary,
		JobNature:  *nature,
		Skills:     *skills,
	}
	if !criteria.Valid() {
		pterm.Error.Println("-position and -location are required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, client.New(*server), criteria, *interval); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, criteria models.SearchCriteria, interval time.Duration) error {
	accepted, err := c.Submit(ctx, criteria)
	if err != nil {
		return err
	}
	started := time.Now()
	pterm.Info.Printfln("search %s accepted for %s in %s", accepted.SearchID, criteria.Position, criteria.Location)

	bar := pb.ProgressBarTemplate(barTemplate).Start(100)
	final, err := c.Wait(ctx, accepted.SearchID, interval, func(p models.SearchProgress) {
		bar.Set("step", p.CurrentStep)
		bar.SetCurrent(int64(p.Progress))
	})
	bar.Finish()
	if err != nil {
		return err
	}

	elapsed := humanize.RelTime(started, time.Now(), "", "")
	if final.Error != nil {
		return fmt.Errorf("search failed after %s: %s", strings.TrimSpace(elapsed), *final.Error)
	}
	if final.ExtractionFailure != "" {
		pterm.Warning.Printfln("the job board could not be scraped: %s", final.ExtractionFailure)
	}

	jobs, err := c.Results(ctx, accepted.SearchID)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("fetch results: %s", apiErr.Message)
	}
	if err != nil {
		return err
	}

	pterm.Success.Printfln("%s (%s)", final.Message, strings.TrimSpace(elapsed))
	if len(jobs) == 0 {
		return nil
	}
	return renderTable(jobs)
}

func renderTable(jobs []models.MatchedJob) error {
	data := pterm.TableData{{"#", "Title", "Company", "Location", "Salary", "Type", "Apply"}}
	for i, j := range jobs {
		data = append(data, []string{
			humanize.Comma(int64(i + 1)),
			j.Title,
			j.Company,
			j.Location,
			j.Salary,
			j.JobType,
			j.ApplyLink,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
