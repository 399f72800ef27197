package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/spf13/cobra"
)

const (
	colorGrey      = "241"
	colorMagenta   = "170"
	colorLightBlue = "69"
	colorPurple    = "#7D56F4"
)

var (
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMagenta)).PaddingBottom(1)
	timeStyle    = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(colorPurple))
	authorStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(colorLightBlue)).
			Bold(true)
	contentStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			PaddingLeft(2)
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGrey)).PaddingLeft(2)
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGrey))
)

var statusesCmd = &cobra.Command{
	Use:   "statuses <account>",
	Short: "Print the statuses of a local or remote account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxID, _ := cmd.Flags().GetString("max-id")
		pinned, _ := cmd.Flags().GetBool("pinned")
		limit, _ := cmd.Flags().GetInt("limit")

		conf, err := loadConf()
		if err != nil {
			return err
		}
		a, err := newApp(conf)
		if err != nil {
			return err
		}
		defer a.Close()

		res := timeline.Classify(args[0], conf.Conf.SslDomain)
		statuses, err := a.statuses.Statuses(cmd.Context(), res, timeline.Options{
			MaxID:  maxID,
			Pinned: pinned,
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderStatuses(res.Handle.Acct(), statuses))
		return nil
	},
}

func renderStatuses(acct string, statuses []domain.Status) string {
	var s strings.Builder
	s.WriteString(captionStyle.Render(fmt.Sprintf("statuses of %s (%d)", acct, len(statuses))))
	s.WriteString("\n")

	if len(statuses) == 0 {
		s.WriteString(emptyStyle.Render("No statuses."))
		s.WriteString("\n")
		return s.String()
	}

	for _, status := range statuses {
		s.WriteString(timeStyle.Render(status.CreatedAt))
		s.WriteString(" ")
		s.WriteString(authorStyle.Render("@" + status.Account.Acct))
		s.WriteString("\n")
		s.WriteString(contentStyle.Render(status.Content))
		s.WriteString("\n")
		s.WriteString(counterStyle.Render(fmt.Sprintf("♥ %d  ⟳ %d  %s", status.FavouritesCount, status.ReblogsCount, status.URI)))
		s.WriteString("\n\n")
	}
	return s.String()
}

func init() {
	statusesCmd.Flags().String("max-id", "", "Only show statuses newer than this status id")
	statusesCmd.Flags().Bool("pinned", false, "Only show pinned statuses")
	statusesCmd.Flags().Int("limit", timeline.DefaultLimit, "Maximum number of statuses")
	rootCmd.AddCommand(statusesCmd)
}
