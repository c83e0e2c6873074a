// Package printing turns document data into PDFs: html/template renders
// the document HTML, a headless Chrome driven through chromedp prints it,
// and a PDFStorage keeps the result on disk or in an S3 bucket.
//
// Example usage:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:        html,
//	    PaperSize:   printing.PaperSizeA4,
//	    Orientation: printing.OrientationPortrait,
//	})
package printing
