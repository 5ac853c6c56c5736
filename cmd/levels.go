package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/vault/internal/levels"
	"github.com/abhisek/vault/internal/ui/theme"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the mastery levels",
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range levels.All() {
			fmt.Printf("%s %s  %s\n",
				theme.Badge.Render(fmt.Sprintf("L%d", l.Number)),
				theme.Bar(l.Number, levels.Max),
				theme.Value.Render(l.Label()))
			fmt.Println("     " + theme.Hint.Render("lesson format: "+l.Format))
		}
	},
}
