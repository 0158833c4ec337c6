package ports

// ArticleRenderer turns KB article markdown into HTML that is safe to
// embed in a page.
type ArticleRenderer interface {
	Render(markdown string) (string, error)
}
