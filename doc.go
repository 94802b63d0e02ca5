// Package papyrus builds styled PDF documents from markdown, with charts,
// diagrams and language-model assisted editing.
//
// # Quick Start
//
//	c, err := papyrus.NewCompiler(papyrus.WithOutputDir("generated"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	art, err := c.CompileToPDF(ctx, "# Report\n\nSales: 100", "modern", papyrus.RenderOptions{
//	    Title: "Q3 Report",
//	})
//
// art.URL is the path the file is served under (/generated/document_<uuid>.pdf).
//
// # Pipeline
//
//  1. Markdown to HTML (goldmark, GFM, syntax highlighting)
//  2. [CHART: ...] and [DIAGRAM: ...] markers replaced by fragments
//  3. Merge into a template with title, author, date and styles
//  4. PDF rasterization with headless Chrome (go-rod): A4, 20mm/15mm margins
//
// Marker expansion and template lookup degrade instead of failing: a
// fragment error keeps the original HTML, an unknown template uses the
// default one.
//
// # Language Model
//
// Analyzer wraps a Completer. LangChainCompleter covers OpenAI and Ollama
// through langchaingo; AnthropicCompleter uses llmkit. Replies that should
// be JSON and are not are errors; nothing is retried.
//
// # Text Extraction
//
// Extractor reads .txt, .md, .html/.htm and .docx files. ExtractSignals
// pulls "label: number" pairs, table rows and bulleted pairs from text
// without any model.
package papyrus
