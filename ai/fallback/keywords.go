package fallback

import "github.com/poiesic/docmind/core"

// categoryKeywords drives rule-based classification. A keyword counts
// once per document regardless of how often it appears.
var categoryKeywords = map[core.DocumentType][]string{
	core.DocumentTypeFinancial:   {"revenue", "profit", "budget", "cost", "financial", "accounting", "investment", "earnings"},
	core.DocumentTypeTechnical:   {"system", "software", "technology", "development", "architecture", "database", "api"},
	core.DocumentTypeStrategic:   {"strategy", "market", "competition", "business", "planning", "vision", "mission"},
	core.DocumentTypeOperational: {"process", "procedure", "operations", "workflow", "efficiency", "productivity"},
	core.DocumentTypeLegal:       {"contract", "agreement", "legal", "compliance", "regulation", "policy"},
}

var positiveWords = []string{
	"excellent", "outstanding", "successful", "growth", "improvement",
	"opportunity", "advantage", "strong", "effective",
}

var negativeWords = []string{
	"poor", "decline", "loss", "problem", "issue",
	"challenge", "threat", "weak", "ineffective",
}

var neutralWords = []string{
	"analysis", "report", "data", "information", "summary", "overview", "description",
}

// insightCues mark sentences carrying recommendations or forward-looking
// statements, which become key insights.
var insightCues = []string{
	"recommend", "should", "objective", "goal", "opportunity",
	"risk", "plan", "expect", "propose", "must",
}
