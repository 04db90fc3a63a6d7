// Package crawler implements the three-stage crawl pipeline: a frontier that
// hands out discovered URLs in order, a bounded pool of fetch workers that
// apply the configured content strategy, and a reassembler that restores
// discovery order before binding content into size-bounded output parts.
package crawler
