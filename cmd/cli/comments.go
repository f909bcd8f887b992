package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/threadline/internal/handler"
)

func newCommentsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"c"},
		Short:   "Read and post comments",
	}
	cmd.AddCommand(newListCommentsCmd(opts), newGetCommentCmd(opts), newPostCommentCmd(opts))
	return cmd
}

func newListCommentsCmd(opts *clientOptions) *cobra.Command {
	var authed bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the comment tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var forest []handler.CommentNodeResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/comments", authed, nil, &forest); err != nil {
				return err
			}
			if len(forest) == 0 {
				cmd.Println("no comments yet")
				return nil
			}
			printForest(cmd.OutOrStdout(), forest, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&authed, "auth", false, "send the stored token (needed when reads are protected)")
	return cmd
}

func newGetCommentCmd(opts *clientOptions) *cobra.Command {
	var authed bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid comment id %q", args[0])
			}
			var c handler.CommentResponse
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/comments/"+strconv.FormatInt(id, 10), authed, nil, &c); err != nil {
				return err
			}
			printComment(cmd.OutOrStdout(), c, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&authed, "auth", false, "send the stored token (needed when reads are protected)")
	return cmd
}

func newPostCommentCmd(opts *clientOptions) *cobra.Command {
	var (
		content string
		parent  int64
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a comment or a reply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := handler.CreateCommentRequest{Content: content}
			if parent != 0 {
				req.ParentID = &parent
			}
			var c handler.CommentResponse
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/comments", true, req, &c); err != nil {
				return err
			}
			cmd.Printf("✓ Posted comment #%d\n", c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "comment text, 3-200 characters")
	cmd.Flags().Int64Var(&parent, "parent", 0, "id of the comment to reply to")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func printForest(w io.Writer, nodes []handler.CommentNodeResponse, depth int) {
	for _, n := range nodes {
		printComment(w, n.CommentResponse, depth)
		printForest(w, n.Children, depth+1)
	}
}

func printComment(w io.Writer, c handler.CommentResponse, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s#%d %s (%s)\n", indent, c.ID, c.User.Username, c.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "%s  %s\n", indent, c.Content)
}
