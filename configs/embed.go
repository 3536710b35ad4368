// Package configs provides the embedded configuration template for faqdesk.
//
// The template is embedded at build time so 'faqdesk init' works in every
// distribution, source builds and binary releases alike. To change it, edit
// faqdesk.example.yaml and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the annotated default configuration written by
// 'faqdesk init'. It mirrors the defaults in internal/config.
//
//go:embed faqdesk.example.yaml
var ConfigTemplate string
