package document

import "regexp"

// Suppression comments honored inside documents, applied in this order.
var suppressionPatterns = []*regexp.Regexp{
	// disable ... enable
	regexp.MustCompile(`<!--[ \t]+markdown-link-check-disable[ \t]+-->[\s\S]*?<!--[ \t]+markdown-link-check-enable[ \t]+-->`),
	// disable without a matching enable runs to the end of the content
	regexp.MustCompile(`<!--[ \t]+markdown-link-check-disable[ \t]+-->[\s\S]*`),
	regexp.MustCompile(`<!--[ \t]+markdown-link-check-disable-next-line[ \t]+-->\r?\n[^\r\n]*`),
	regexp.MustCompile(`[^\r\n]*<!--[ \t]+markdown-link-check-disable-line[ \t]+-->[^\r\n]*`),
}

// StripSuppressed removes every suppressed region from content.
func StripSuppressed(content []byte) []byte {
	for _, re := range suppressionPatterns {
		content = re.ReplaceAll(content, nil)
	}
	return content
}
