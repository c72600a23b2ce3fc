package descriptions

// Tool descriptions shown to MCP clients

const (
	ExtractAnnotationsDescription = `Export the highlights, notes and comments of a PDF into a markdown (or HTML) report next to the file.

**When to use:** A reader has marked up a paper or book and wants the annotations as a reviewable document.

**What it does:** Walks every page, reads each annotation's comment, author and date, recovers the text under highlights and text markups, and writes <name>_annotations.md grouped by page.

**Page numbers:** Each section is titled with the physical page and the page number printed in the document. The offset between them is detected from the first pages unless "offset" is given (-1 means detect).

**Examples:**
• "Export my notes from thesis.pdf"
• "Write the annotations of book.pdf as HTML, numbering starts on the third sheet" (offset -2)

**Best practices:** Run pdf_detect_page_offset first when the document has long front matter.`

	ListAnnotationsDescription = `Return the annotations of a PDF as JSON without writing any file.

**When to use:** You want to work with the annotations directly: filter by author, summarize comments, cross-reference highlights.

**Output:** One record per kept annotation with page, page label, type, comment, highlighted text, author, the raw PDF dates and their RFC 3339 form when parseable, and the annotation rectangle. Annotations with neither a comment nor highlighted text are omitted.`

	DetectPageOffsetDescription = `Detect the offset between physical pages and the page numbers printed in a PDF.

**When to use:** Before exporting annotations from documents with a cover, table of contents or other unnumbered front matter.

**How it works:** The first ten pages are scanned for a number within two of the physical page number; the first match fixes the offset. With "page_labels" the document's embedded page labels are tried first. Returns -1 when nothing is found, which treats the first page as the title page.`

	ServerInfoDescription = `Describe this server and list the PDFs it can read.

**When to use:** At the start of a session, to find out which documents are available and which report formats and languages are supported.

**Output:** JSON with the served directory, the size limit, formats, languages, tool names and up to 100 PDFs (five directory levels deep). File paths are relative to the directory and can be passed as "path" to the other tools. The listing is cached for five minutes; set "refresh" to rescan.`
)
