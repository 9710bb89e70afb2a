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
	"pydash/internal/store"
)

var (
	historyLimit  int
	historyScanID int64
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded scans",
	Long: `History lists scans recorded with 'pydash scan --record' or through the
web dashboard. Use --scan to show the projects captured by one scan.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of scans to show")
	historyCmd.Flags().Int64Var(&historyScanID, "scan", 0, "Show the projects of one recorded scan")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer db.Close()

	if historyScanID != 0 {
		return renderScanDetail(db, historyScanID)
	}

	scans, err := db.RecentScans(historyLimit)
	if err != nil {
		return fmt.Errorf("querying scans: %w", err)
	}

	if historyJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scans)
	}

	if len(scans) == 0 {
		fmt.Println(output.StyleMuted.Render("No recorded scans. Run 'pydash scan --record' first."))
		return nil
	}

	tbl := output.NewTable("ID", "Taken", "Root", "Projects", "Duration")
	for _, s := range scans {
		tbl.AddRow(
			strconv.FormatInt(s.ID, 10),
			s.TakenAt.Local().Format("2006-01-02 15:04"),
			s.Root,
			strconv.Itoa(s.ProjectCount),
			s.Duration.Round(time.Millisecond).String(),
		)
	}
	tbl.Print()
	return nil
}

// renderScanDetail prints the project rows of one recorded scan.
func renderScanDetail(db *store.DB, scanID int64) error {
	projects, err := db.ProjectsForScan(scanID)
	if err != nil {
		return fmt.Errorf("querying scan %d: %w", scanID, err)
	}

	if historyJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}

	if len(projects) == 0 {
		fmt.Printf("No projects recorded for scan %d.\n", scanID)
		return nil
	}

	tbl := output.NewTable("Project", "Kind", "Branch", "Git", "Py")
	for _, p := range projects {
		gitCol := "-"
		if p.HasGit {
			switch {
			case p.NeedsFix:
				gitCol = output.StyleWarning.Render(p.FixReason)
			case p.HasChanges:
				gitCol = output.StyleWarning.Render("dirty")
			default:
				gitCol = output.StyleSuccess.Render("clean")
			}
		}
		tbl.AddRow(p.Name, p.Kind, p.Branch, gitCol, strconv.Itoa(p.PythonFiles))
	}
	tbl.Print()
	return nil
}
