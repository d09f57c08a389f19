// Package printing renders seller documents to PDF with headless Chrome.
//
// ChromedpRenderer drives a shared browser allocator and opens a tab per
// render. PackingSlipRenderer fills the packing slip template and hands the
// HTML to any PDFRenderer.
package printing
