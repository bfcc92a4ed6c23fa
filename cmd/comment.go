package cmd

import (
	"strconv"

	"github.com/ossreview/depgate/pretty"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment <issue-number> <body.md>",
	Short: "Post a comment on an existing issue or pull request.",
	Long:  "Post a comment on an existing issue or pull request.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		number, err := strconv.Atoi(args[0])
		pretty.Guard(err == nil, 1, "Issue number %q is not a number.", args[0])
		body := readText(args[1], "comment body")
		err = forgeClient().PostComment(number, body)
		pretty.Guard(err == nil, 2, "Cannot post comment, reason: %v", err)
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)
}
