package feed

import (
	"net/url"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Festival de música comunitaria</title>
	<meta property="og:image" content="/img/festival.jpg">
	<meta name="author" content="María López">
</head>
<body>
	<header><nav>Inicio | Blog | Contacto</nav></header>
	<main>
		<article>
			<h1>Festival de música comunitaria</h1>
			<p>Este sábado se celebra el festival de música comunitaria en la plaza central. Participan más de veinte bandas locales y habrá transmisión en vivo por la radio.</p>
			<p>La entrada es gratuita y el festival comienza a las cinco de la tarde. Los organizadores invitan a las familias a traer sus sillas y disfrutar de la música.</p>
			<p>Durante la jornada también habrá puestos de comida y artesanías de productores del barrio, con actividades para niños a lo largo de toda la tarde.</p>
		</article>
	</main>
	<aside><div>Publicidad</div></aside>
	<footer><p>Copyright 2024</p></footer>
</body>
</html>`

func TestContentExtractorExtractsArticle(t *testing.T) {
	extractor := NewContentExtractor()
	pageURL, _ := url.Parse("https://noticias.example.com/festival")

	article, err := extractor.Run([]byte(articleHTML), pageURL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(article.Content, "festival de música comunitaria en la plaza central") {
		t.Errorf("Expected extracted content to contain the article text")
	}
	if strings.Contains(article.Content, "Publicidad") {
		t.Errorf("Expected extracted content to exclude the aside")
	}
	if article.Title == "" {
		t.Errorf("Expected a title")
	}
	if article.Excerpt == "" {
		t.Errorf("Expected an excerpt")
	}
}

func TestContentExtractorEmptyInput(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run(nil, nil); err == nil {
		t.Error("Expected error for empty HTML data")
	}
	if _, err := extractor.Run([]byte(""), nil); err == nil {
		t.Error("Expected error for empty HTML data")
	}
}
