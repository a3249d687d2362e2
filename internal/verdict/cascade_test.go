package verdict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verity-group/claimcheck/internal/model"
)

var testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testClaim(text string) model.Claim {
	return model.Claim{
		ID:            "claim-1",
		RawText:       text,
		CanonicalText: model.Canonicalize(text),
		Language:      "en",
		Signature:     model.ComputeSignature(text),
	}
}

// item builds evidence with neutral defaults: item confidence 70, English,
// undated, news type.
func item(stance model.Stance, weight float64) model.Evidence {
	return model.Evidence{
		SourceName: "source",
		Stance:     stance,
		Publisher:  model.Publisher{Name: "source", Weight: weight},
		Confidence: 70,
		Type:       model.EvidenceTypeNews,
		Language:   "en",
	}
}

func testOpts() Options {
	return Options{
		CredibilityWeighting: true,
		ConfidenceThreshold:  60,
	}
}

func TestCascadeInsufficientEvidence(t *testing.T) {
	t.Parallel()

	t.Run("zero items", func(t *testing.T) {
		t.Parallel()
		s := runCascade(testClaim("the sky is green"), nil, testNow, testOpts())
		assert.Equal(t, model.VerdictUnverified, s.label)
		assert.InDelta(t, 30, s.confidence, 0.001)
		assert.Equal(t, []string{"insufficient_evidence"}, s.methodology)
	})

	t.Run("one item", func(t *testing.T) {
		t.Parallel()
		s := runCascade(testClaim("the sky is green"), []model.Evidence{item(model.StanceSupports, 0.9)}, testNow, testOpts())
		assert.Equal(t, model.VerdictUnverified, s.label)
		assert.InDelta(t, 30, s.confidence, 0.001)
		assert.NotEmpty(t, s.limitations)
	})
}

func TestCascadeSatire(t *testing.T) {
	t.Parallel()

	satireItem := item(model.StanceNeutral, 0.1)
	satireItem.Title = "Satire: moon declared a hologram"
	evidence := []model.Evidence{satireItem, item(model.StanceSupports, 0.9)}

	s := runCascade(testClaim("the moon is a hologram"), evidence, testNow, testOpts())
	assert.Equal(t, model.VerdictSatire, s.label)
	assert.InDelta(t, 85, s.confidence, 0.001)
	assert.Contains(t, s.methodology, "satire_detection")
	assert.NotContains(t, s.methodology, "weighted_consensus")
}

func TestCascadeHighCredibility(t *testing.T) {
	t.Parallel()

	t.Run("supporting majority yields true", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceSupports, 0.9),
			item(model.StanceSupports, 0.9),
			item(model.StanceNeutral, 0.4),
		}
		s := runCascade(testClaim("the vaccine is effective"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictTrue, s.label)
		assert.InDelta(t, 85, s.confidence, 0.001) // 75 + 5 per supporting source
	})

	t.Run("refuting majority yields false", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceRefutes, 0.95),
			item(model.StanceRefutes, 0.9),
			item(model.StanceRefutes, 0.9),
		}
		s := runCascade(testClaim("the earth is flat"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictFalse, s.label)
		assert.InDelta(t, 90, s.confidence, 0.001)
	})

	t.Run("three-way split yields misleading", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceSupports, 0.9),
			item(model.StanceRefutes, 0.9),
			item(model.StanceNeutral, 0.9),
		}
		s := runCascade(testClaim("the policy cut crime"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictMisleading, s.label)
	})

	t.Run("single high-credibility source is not enough", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceSupports, 0.9),
			item(model.StanceNeutral, 0.4),
		}
		s := runCascade(testClaim("the budget passed"), evidence, testNow, testOpts())
		assert.NotEqual(t, model.VerdictTrue, s.label)
	})
}

func TestCascadeWeightedConsensus(t *testing.T) {
	t.Parallel()

	t.Run("tied weights force misleading over plurality", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceSupports, 0.5),
			item(model.StanceSupports, 0.5),
			item(model.StanceRefutes, 0.5),
			item(model.StanceRefutes, 0.5),
		}
		s := runCascade(testClaim("the tax cut paid for itself"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictMisleading, s.label)
		assert.InDelta(t, 65, s.confidence, 0.001)
	})

	t.Run("substantial evidence both sides overrides plurality winner", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceSupports, 0.8),
			item(model.StanceRefutes, 0.7),
			item(model.StanceNeutral, 0.5),
		}
		s := runCascade(testClaim("the merger doubled profits"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictMisleading, s.label)
		assert.InDelta(t, 65, s.confidence, 0.001)
	})

	t.Run("clear plurality wins", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceSupports, 0.8),
			item(model.StanceSupports, 0.8),
			item(model.StanceSupports, 0.8),
			item(model.StanceRefutes, 0.2),
		}
		s := runCascade(testClaim("exports rose last year"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictTrue, s.label)
	})

	t.Run("consensus mode requires seventy percent", func(t *testing.T) {
		t.Parallel()
		opts := testOpts()
		opts.RequireConsensus = true

		evidence := []model.Evidence{
			item(model.StanceSupports, 0.8),
			item(model.StanceSupports, 0.8),
			item(model.StanceSupports, 0.8),
			item(model.StanceRefutes, 0.2),
		}
		s := runCascade(testClaim("exports rose last year"), evidence, testNow, opts)
		assert.Equal(t, model.VerdictTrue, s.label)
		assert.InDelta(t, 95, s.confidence, 0.001)

		split := []model.Evidence{
			item(model.StanceSupports, 0.5),
			item(model.StanceSupports, 0.5),
			item(model.StanceRefutes, 0.5),
		}
		s = runCascade(testClaim("exports rose last year"), split, testNow, opts)
		assert.Equal(t, model.VerdictUnverified, s.label)
	})
}

func TestCascadeOutOfContext(t *testing.T) {
	t.Parallel()

	t.Run("stale year reference in claim", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceNeutral, 0.5),
			item(model.StanceNeutral, 0.5),
			item(model.StanceNeutral, 0.5),
		}
		s := runCascade(testClaim("In 2015 unemployment was at a record low"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictOutOfContext, s.label)
		assert.InDelta(t, 70, s.confidence, 0.001)
	})

	t.Run("context caveat in evidence", func(t *testing.T) {
		t.Parallel()
		caveat := item(model.StanceNeutral, 0.5)
		caveat.Snippet = "The figure is taken out of context from a larger report."
		evidence := []model.Evidence{caveat, item(model.StanceNeutral, 0.5), item(model.StanceNeutral, 0.5)}

		s := runCascade(testClaim("spending doubled overnight"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictOutOfContext, s.label)
	})

	t.Run("firm false verdict is not reclassified", func(t *testing.T) {
		t.Parallel()
		evidence := []model.Evidence{
			item(model.StanceRefutes, 0.95),
			item(model.StanceRefutes, 0.9),
		}
		s := runCascade(testClaim("In 2010 the law was repealed"), evidence, testNow, testOpts())
		assert.Equal(t, model.VerdictFalse, s.label)
	})
}

func TestCascadeTemporalPenalty(t *testing.T) {
	t.Parallel()
	stale := testNow.AddDate(-3, 0, 0)

	evidence := []model.Evidence{
		item(model.StanceSupports, 0.9),
		item(model.StanceSupports, 0.9),
		item(model.StanceSupports, 0.9),
	}
	for i := range evidence {
		evidence[i].PublishedAt = &stale
	}

	s := runCascade(testClaim("the program is fully funded"), evidence, testNow, testOpts())
	assert.Equal(t, model.VerdictTrue, s.label)
	assert.InDelta(t, 75, s.confidence, 0.001) // 90 from high-cred analysis, minus 15
	assert.NotEmpty(t, s.limitations)
}

func TestCascadeLanguagePenalty(t *testing.T) {
	t.Parallel()

	evidence := []model.Evidence{
		item(model.StanceSupports, 0.9),
		item(model.StanceSupports, 0.9),
		item(model.StanceSupports, 0.9),
	}
	for i := range evidence {
		evidence[i].Language = "de"
	}

	s := runCascade(testClaim("the treaty was signed"), evidence, testNow, testOpts())
	assert.Equal(t, model.VerdictTrue, s.label)
	assert.InDelta(t, 80, s.confidence, 0.001) // 90 minus the 10-point language penalty
	assert.NotEmpty(t, s.limitations)
}

func TestCascadeThresholdFilter(t *testing.T) {
	t.Parallel()

	opts := testOpts()
	opts.ConfidenceThreshold = 95

	evidence := []model.Evidence{
		item(model.StanceSupports, 0.9),
		item(model.StanceSupports, 0.9),
		item(model.StanceNeutral, 0.4),
	}
	s := runCascade(testClaim("inflation slowed in april"), evidence, testNow, opts)
	assert.Equal(t, model.VerdictUnverified, s.label)
	assert.Contains(t, s.rationale[0], "below")
	assert.Contains(t, s.rationale[0], "true")
}

func TestQualityMultiplier(t *testing.T) {
	t.Parallel()

	qitem := func(typ model.EvidenceType, confidence float64, indicators int) model.Evidence {
		e := item(model.StanceSupports, 0.5)
		e.Type = typ
		e.Confidence = confidence
		for i := 0; i < indicators; i++ {
			e.CredibilityIndicators = append(e.CredibilityIndicators, "indicator")
		}
		return e
	}

	tests := []struct {
		name     string
		evidence []model.Evidence
		want     float64
	}{
		{
			name: "plain news holds the multiplier at one",
			evidence: []model.Evidence{
				qitem(model.EvidenceTypeNews, 70, 0),
				qitem(model.EvidenceTypeNews, 70, 0),
			},
			want: 60,
		},
		{
			name: "claim review adds a tenth",
			evidence: []model.Evidence{
				qitem(model.EvidenceTypeClaimReview, 70, 0),
				qitem(model.EvidenceTypeNews, 70, 0),
			},
			want: 66,
		},
		{
			name: "knowledge base adds a twentieth",
			evidence: []model.Evidence{
				qitem(model.EvidenceTypeKB, 70, 0),
				qitem(model.EvidenceTypeNews, 70, 0),
			},
			want: 63,
		},
		{
			name: "dense credibility indicators add a twentieth",
			evidence: []model.Evidence{
				qitem(model.EvidenceTypeNews, 70, 3),
				qitem(model.EvidenceTypeNews, 70, 3),
			},
			want: 63,
		},
		{
			name: "high average item confidence adds a tenth",
			evidence: []model.Evidence{
				qitem(model.EvidenceTypeNews, 90, 0),
				qitem(model.EvidenceTypeNews, 85, 0),
			},
			want: 66,
		},
		{
			name: "low average item confidence costs a tenth",
			evidence: []model.Evidence{
				qitem(model.EvidenceTypeNews, 50, 0),
				qitem(model.EvidenceTypeNews, 55, 0),
			},
			want: 54,
		},
		{
			name: "stacked bonuses stop at the upper bound",
			evidence: []model.Evidence{
				qitem(model.EvidenceTypeClaimReview, 90, 4),
				qitem(model.EvidenceTypeKB, 90, 4),
			},
			want: 78,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ec := evidenceContext{
				claim:    testClaim("the plant reopened"),
				evidence: tt.evidence,
				now:      testNow,
				opts:     testOpts(),
			}
			s := qualityMultiplier(state{confidence: 60}, ec)
			assert.InDelta(t, tt.want, s.confidence, 0.001)
		})
	}

	t.Run("multiplier bounds", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 0.5, clamp(0.4, 0.5, 1.3), 0.001)
		assert.InDelta(t, 1.3, clamp(1.35, 0.5, 1.3), 0.001)
	})
}

func TestCascadeDeterminism(t *testing.T) {
	t.Parallel()

	evidence := []model.Evidence{
		item(model.StanceSupports, 0.9),
		item(model.StanceRefutes, 0.6),
		item(model.StanceNeutral, 0.5),
		item(model.StanceSupports, 0.7),
	}
	claim := testClaim("the reservoir is at half capacity")

	a := runCascade(claim, evidence, testNow, testOpts())
	b := runCascade(claim, evidence, testNow, testOpts())
	assert.Equal(t, a, b)
}

func TestCascadeConfidenceBounds(t *testing.T) {
	t.Parallel()

	cases := [][]model.Evidence{
		nil,
		{item(model.StanceSupports, 0.95)},
		{item(model.StanceSupports, 0.95), item(model.StanceSupports, 0.95), item(model.StanceSupports, 0.95), item(model.StanceSupports, 0.95), item(model.StanceSupports, 0.95)},
		{item(model.StanceRefutes, 0.1), item(model.StanceRefutes, 0.1), item(model.StanceRefutes, 0.1)},
	}
	for _, evidence := range cases {
		s := runCascade(testClaim("any claim"), evidence, testNow, testOpts())
		assert.GreaterOrEqual(t, s.confidence, 0.0)
		assert.LessOrEqual(t, s.confidence, 100.0)
	}
}
