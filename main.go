package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/nonsonwune/hostel_admin/audit"
	"github.com/nonsonwune/hostel_admin/client"
	"github.com/nonsonwune/hostel_admin/config"
	"github.com/nonsonwune/hostel_admin/console"
	"github.com/nonsonwune/hostel_admin/filter"
	"github.com/nonsonwune/hostel_admin/importer"
	"github.com/nonsonwune/hostel_admin/models"
	"github.com/nonsonwune/hostel_admin/nlquery"
	"github.com/nonsonwune/hostel_admin/render"
)

type app struct {
	cfg    config.Config
	page   *console.Page
	engine *nlquery.Engine
	store  *audit.Store
	in     *bufio.Scanner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:    cfg,
		engine: nlquery.NewEngine(cfg.GeminiKeys, cfg.GeminiModel),
		in:     bufio.NewScanner(os.Stdin),
	}

	opts := []console.Option{console.WithWorkerCount(cfg.WorkerCount)}
	if cfg.DB.Enabled() {
		store, err := audit.Open(ctx, cfg.DB)
		if err != nil {
			log.Printf("Warning: decision history disabled: %v", err)
		} else {
			a.store = store
			defer store.Close()
			opts = append(opts, console.WithRecorder(store))
		}
	}

	api := client.New(cfg.APIURL, cfg.APITimeout, client.WithToken(cfg.APIToken))
	notifier := console.NewNotifier(cfg.DismissDelay, func(n *console.Notification) {
		render.Notification(os.Stdout, n)
	})
	a.page = console.NewPage(api, notifier, opts...)
	defer a.page.Close()

	color.Cyan("Loading students from %s ...", cfg.APIURL)
	<-a.page.Mount()
	if a.page.Loaded() {
		color.Green("Loaded %d students", len(a.page.Students()))
	}

	a.run(ctx)
}

func (a *app) run(ctx context.Context) {
	for {
		displayMenu(a.page)
		choice, ok := a.readLine()
		if !ok || ctx.Err() != nil {
			return
		}

		switch choice {
		case "1":
			a.listStudents()
		case "2":
			a.searchStudents()
		case "3":
			a.refresh(ctx)
		case "4":
			a.decide(ctx, models.ActionApprove)
		case "5":
			a.decide(ctx, models.ActionReject)
		case "6":
			a.listPending()
		case "7":
			a.ask(ctx)
		case "8":
			a.applyDecisionsFile(ctx)
		case "9":
			a.exportView()
		case "10":
			a.showHistory(ctx)
		case "11":
			color.Green("Goodbye!")
			return
		default:
			color.Red("Invalid choice. Please try again.")
		}
	}
}

func displayMenu(page *console.Page) {
	color.Cyan("\n=== Hostel Requests Admin ===")
	if c := page.Criteria(); !c.IsZero() {
		color.Yellow("Active filter: %s", describeCriteria(c))
	}
	fmt.Println("1. List Students")
	fmt.Println("2. Search Students")
	fmt.Println("3. Refresh")
	fmt.Println("4. Approve Hostel Request")
	fmt.Println("5. Reject Hostel Request")
	fmt.Println("6. Pending Requests")
	fmt.Println("7. Ask (natural language search)")
	fmt.Println("8. Apply Decisions From CSV")
	fmt.Println("9. Export Current View To CSV")
	fmt.Println("10. Decision History")
	fmt.Println("11. Exit")
	fmt.Print("\nEnter your choice (1-11): ")
}

func (a *app) listStudents() {
	if !a.page.Loaded() {
		color.Yellow("Student list has not been loaded yet. Use Refresh to try again.")
		return
	}
	render.Students(os.Stdout, a.page.Visible())
}

func (a *app) searchStudents() {
	fmt.Print("Enter name or enrollment number (blank to clear): ")
	term, _ := a.readLine()
	a.page.SetSearch(term)
	a.listStudents()
}

func (a *app) refresh(ctx context.Context) {
	if err := a.page.Refresh(ctx); err != nil {
		return
	}
	color.Green("Loaded %d students", len(a.page.Students()))
	render.Students(os.Stdout, a.page.Visible())
}

func (a *app) decide(ctx context.Context, action models.HostelAction) {
	pending := filter.Pending(a.page.Students())
	if len(pending) == 0 {
		color.Yellow("There are no pending hostel requests.")
		return
	}
	render.Students(os.Stdout, pending)

	fmt.Printf("Enter the student ID to %s: ", action)
	id, _ := a.readLine()
	if id == "" {
		fmt.Println("Cancelled.")
		return
	}
	if !hasStudent(pending, id) {
		color.Yellow("%s has no pending request in the current list.", id)
		fmt.Print("Send anyway? (y/n): ")
		if answer, _ := a.readLine(); strings.ToLower(answer) != "y" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := a.page.HandleRequest(ctx, id, action); err != nil {
		return
	}
	render.Students(os.Stdout, a.page.Visible())
}

func (a *app) listPending() {
	color.Yellow("\nPending Hostel Requests")
	render.Students(os.Stdout, filter.Pending(a.page.Visible()))
}

func (a *app) ask(ctx context.Context) {
	if !a.engine.UsesModel() {
		color.Yellow("No Gemini key configured, using keyword search.")
	}
	fmt.Print("Ask a question (e.g. \"flagged students waiting for Block B\"): ")
	question, _ := a.readLine()
	if question == "" {
		return
	}

	c, err := a.engine.Translate(ctx, question, a.page.Students())
	if err != nil {
		color.Red("Error processing question: %v", err)
		return
	}
	a.page.SetCriteria(c)
	color.Cyan("Filter: %s", describeCriteria(c))
	render.Students(os.Stdout, a.page.Visible())
}

func (a *app) applyDecisionsFile(ctx context.Context) {
	fmt.Print("Enter the CSV file path (columns student_id,action): ")
	filename, _ := a.readLine()

	file, err := os.Open(filename)
	if err != nil {
		color.Red("Error opening file: %v", err)
		return
	}
	defer file.Close()

	rows, invalid, err := importer.ReadDecisions(csv.NewReader(file))
	if err != nil {
		color.Red("Error reading decisions: %v", err)
		return
	}
	for _, e := range invalid {
		color.Yellow("Skipping %v", e)
	}
	if len(rows) == 0 {
		color.Yellow("No valid decisions found.")
		return
	}

	fmt.Printf("\nUsing %d workers for parallel processing\n", a.cfg.WorkerCount)
	fmt.Printf("Ready to submit %d decisions from %s\n", len(rows), filename)
	fmt.Print("Proceed? (y/n): ")
	if answer, _ := a.readLine(); strings.ToLower(answer) != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	result, err := a.page.ApplyBatch(ctx, rows)
	if err != nil {
		color.Red("Error applying decisions: %v", err)
		return
	}
	importer.PrintSummary(result, invalid)

	if path, err := importer.SaveFailedRecords(importer.FailedDir, append(invalid, result.Failures...)); err != nil {
		color.Red("Error saving failed records: %v", err)
	} else if path != "" {
		color.Yellow("Failed rows written to %s", path)
	}
}

func (a *app) exportView() {
	filename := fmt.Sprintf("students_%s.csv", time.Now().Format("20060102_150405"))
	fmt.Printf("Enter the output path [%s]: ", filename)
	if path, _ := a.readLine(); path != "" {
		filename = path
	}

	file, err := os.Create(filename)
	if err != nil {
		color.Red("Error creating file: %v", err)
		return
	}
	defer file.Close()

	visible := a.page.Visible()
	if err := render.ExportCSV(file, visible); err != nil {
		color.Red("Error exporting students: %v", err)
		return
	}
	color.Green("Exported %d students to %s", len(visible), filename)
}

func (a *app) showHistory(ctx context.Context) {
	if a.store == nil {
		color.Yellow("Decision history is disabled. Set DB_HOST to enable it.")
		return
	}

	fmt.Printf("How many entries? [%d]: ", audit.DefaultHistoryLimit)
	limit := audit.DefaultHistoryLimit
	if v, _ := a.readLine(); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			color.Red("Invalid number: %s", v)
			return
		}
		limit = n
	}

	decisions, err := a.store.Recent(ctx, limit)
	if err != nil {
		log.Printf("Error loading decision history: %v", err)
		color.Red("Could not load decision history")
		return
	}
	color.Yellow("\nRecent Decisions")
	render.Decisions(os.Stdout, decisions)
}

// readLine returns false once stdin is closed.
func (a *app) readLine() (string, bool) {
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
			log.Printf("Error reading input: %v", err)
		}
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func hasStudent(list []models.Student, id string) bool {
	for _, s := range list {
		if s.ID == id {
			return true
		}
	}
	return false
}

func describeCriteria(c filter.Criteria) string {
	var parts []string
	if t := strings.TrimSpace(c.Term); t != "" {
		parts = append(parts, fmt.Sprintf("search %q", t))
	}
	if c.PendingOnly {
		parts = append(parts, "pending requests")
	}
	if c.Unassigned {
		parts = append(parts, "no hostel")
	}
	if c.Hostel != "" {
		parts = append(parts, "hostel "+c.Hostel)
	}
	if c.MinScore != nil {
		parts = append(parts, fmt.Sprintf("score >= %d", *c.MinScore))
	}
	if c.MaxScore != nil {
		parts = append(parts, fmt.Sprintf("score <= %d", *c.MaxScore))
	}
	if len(parts) == 0 {
		return "everyone"
	}
	return strings.Join(parts, ", ")
}
