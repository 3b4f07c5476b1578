package motionjson

import (
	"encoding/json"
	"fmt"

	"github.com/teslashibe/go-motion/pkg/motion"
)

// ParseExpression parses a .exp3.json buffer. Missing or negative fade times
// default to DefaultFadeTime; unknown blend tokens are additive.
func ParseExpression(data []byte) (*motion.ExpressionDocument, error) {
	var raw ExpressionFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse expression JSON: %w", err)
	}

	doc := &motion.ExpressionDocument{
		FadeInTime:  fadeOrDefault(raw.FadeInTime),
		FadeOutTime: fadeOrDefault(raw.FadeOutTime),
		Parameters:  make([]motion.ExpressionParameter, 0, len(raw.Parameters)),
	}
	for _, p := range raw.Parameters {
		doc.Parameters = append(doc.Parameters, motion.ExpressionParameter{
			ID:    p.ID,
			Value: p.Value,
			Blend: motion.ParseBlendMode(p.Blend),
		})
	}
	return doc, nil
}
