package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pydash/internal/config"
	"pydash/internal/output"
	"pydash/internal/scanner"
	"pydash/internal/store"
)

var (
	scanFlagJSON   bool
	scanFlagRecord bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover projects and show their status",
	Long: `Scan walks the immediate children of the projects directory, classifies
each as a Python project or standalone script, and reconciles it against its
virtual environment and git repository. The walk is time-bounded: oversized
directories yield a partial, most-recently-modified-first result rather than
a slow one.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFlagJSON, "json", false, "Output as JSON")
	scanCmd.Flags().BoolVar(&scanFlagRecord, "record", false, "Record this scan in the history database")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sc := newScanner(cfg)
	start := time.Now()
	projects := sc.Scan(cmd.Context(), cfg.ProjectsDir)
	elapsed := time.Since(start)

	if scanFlagRecord {
		db, err := store.Open(config.DBPath())
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer db.Close()
		if _, err := db.RecordScan(cfg.ProjectsDir, elapsed, projects); err != nil {
			return fmt.Errorf("recording scan: %w", err)
		}
	}

	if scanFlagJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}

	renderScanTable(projects)
	fmt.Printf("\n%d project(s) in %s under %s\n",
		len(projects), elapsed.Round(time.Millisecond), cfg.ProjectsDir)
	return nil
}

// renderScanTable prints the project list as a styled table.
func renderScanTable(projects []scanner.Project) {
	if len(projects) == 0 {
		fmt.Println(output.StyleMuted.Render("No projects found."))
		return
	}

	tbl := output.NewTable("Project", "Kind", "Venv", "Git", "Py", "Modified")
	for _, p := range projects {
		tbl.AddRow(
			p.Name,
			string(p.Type),
			venvCell(p),
			gitCell(p),
			strconv.Itoa(p.PythonFiles),
			p.LastModified,
		)
	}
	tbl.Print()
}

// venvCell summarizes a project's virtual environment for the table.
func venvCell(p scanner.Project) string {
	switch {
	case p.Venv.Active:
		return output.StyleSuccess.Render("active")
	case p.Venv.Exists:
		return "yes"
	default:
		return output.StyleMuted.Render("-")
	}
}

// gitCell summarizes a project's git state for the table.
func gitCell(p scanner.Project) string {
	if !p.Git.HasGit {
		return output.StyleMuted.Render("-")
	}
	branch := p.Git.Branch
	if p.Git.NeedsFix {
		return output.StyleWarning.Render(branch + " (" + p.Git.FixReason + ")")
	}
	if p.Git.HasChanges {
		return output.StyleWarning.Render(branch + " *")
	}
	return output.StyleSuccess.Render(branch)
}
