package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/knowledge"
)

type articleView struct {
	ID        uint64 `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Category  string `json:"category" yaml:"category"`
	Content   string `json:"content,omitempty" yaml:"content,omitempty"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	UpdatedAt string `json:"updated_at" yaml:"updated_at"`
}

func newArticleView(article ports.KBArticle, withContent bool) articleView {
	view := articleView{
		ID:        article.ArticleID,
		Title:     article.Title,
		Category:  article.Category,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
	if withContent {
		view.Content = article.Content
	}
	return view
}

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage knowledge-base articles",
}

func articleInputFromFlags(cmd *cobra.Command) (knowledge.ArticleInput, error) {
	title, _ := cmd.Flags().GetString("title")
	category, _ := cmd.Flags().GetString("category")
	content, err := resolveText(cmd, "content", false)
	if err != nil {
		return knowledge.ArticleInput{}, err
	}
	return knowledge.ArticleInput{Title: title, Category: category, Content: content}, nil
}

var kbCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an article",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		input, err := articleInputFromFlags(cmd)
		if err != nil {
			return err
		}
		articleID, err := svc.Knowledge.CreateArticle(ctx, input)
		if err != nil {
			logging.Error(ctx, "create kb article failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create kb article")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created kb article: %d\n", articleID); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles grouped by category",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		groups, err := svc.Knowledge.ArticlesByCategory(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "list kb articles")
		}

		views := make([]articleView, 0)
		for _, group := range groups {
			for _, article := range group.Articles {
				views = append(views, newArticleView(article, false))
			}
		}
		return writeOutput(cmd, views, func(w io.Writer) error {
			if len(groups) == 0 {
				_, err := fmt.Fprintln(w, "no articles")
				return err
			}
			for _, group := range groups {
				if _, err := fmt.Fprintf(w, "%s\n", group.Category); err != nil {
					return err
				}
				for _, article := range group.Articles {
					if _, err := fmt.Fprintf(w, "  %d  %s\n", article.ArticleID, article.Title); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}),
}

var kbShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an article",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		articleID, err := parseIDArg("article", cmd.Flags().Args())
		if err != nil {
			return err
		}
		article, err := svc.Knowledge.GetArticle(cmd.Context(), articleID)
		if err != nil {
			return errs.Wrap(err, "show kb article")
		}

		view := newArticleView(article, true)
		return writeOutput(cmd, view, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%d %s [%s]\nupdated %s\n\n%s\n", view.ID, view.Title, view.Category, view.UpdatedAt, view.Content)
			return err
		})
	}),
}

var kbUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace an article's title, category and content",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		articleID, err := parseIDArg("article", cmd.Flags().Args())
		if err != nil {
			return err
		}
		input, err := articleInputFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := svc.Knowledge.UpdateArticle(ctx, articleID, input); err != nil {
			logging.Error(ctx, "update kb article failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update kb article")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated kb article: %d\n", articleID); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

var kbDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an article that no ticket links to",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		articleID, err := parseIDArg("article", cmd.Flags().Args())
		if err != nil {
			return err
		}
		if err := svc.Knowledge.DeleteArticle(ctx, articleID); err != nil {
			logging.Error(ctx, "delete kb article failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete kb article")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted kb article: %d\n", articleID); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

var kbRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Print an article as sanitized HTML",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		articleID, err := parseIDArg("article", cmd.Flags().Args())
		if err != nil {
			return err
		}
		html, err := svc.Knowledge.RenderArticle(cmd.Context(), articleID)
		if err != nil {
			return errs.Wrap(err, "render kb article")
		}

		if _, err := io.WriteString(cmd.OutOrStdout(), html); err != nil {
			return errs.Wrap(err, "write render output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbCreateCmd, kbListCmd, kbShowCmd, kbUpdateCmd, kbDeleteCmd, kbRenderCmd)

	for _, cmd := range []*cobra.Command{kbCreateCmd, kbUpdateCmd} {
		cmd.Flags().String("title", "", "Article title")
		cmd.Flags().String("category", "", "Article category")
		addTextFlags(cmd, "content", "Markdown content")
	}
	addFormatFlag(kbListCmd)
	addFormatFlag(kbShowCmd)
}
