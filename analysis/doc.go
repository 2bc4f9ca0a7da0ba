// Package analysis selects between the LLM-backed analyzer and the
// deterministic rule-based fallback, marking results degraded whenever
// the fallback produced them. Analysis failures never fail ingestion.
package analysis
