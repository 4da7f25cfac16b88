// 指示: miu200521358
package messages

import (
	"strings"
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
)

func TestMessagesAreDefinedAndUnique(t *testing.T) {
	texts := []string{
		MessageOptimizeStart,
		MessageOptimizeComplete,
		MessageRulesApplied,
		MessageReportSaved,
		MessageBatchStart,
		MessageBatchComplete,
		MessageBatchEntryFailed,
		MessageManifestSaved,
		MessageWarningLine,
		WarningUnknownJointDropped,
		WarningDuplicateFrameOverwritten,
		WarningDuplicateTrackOverwritten,
	}

	seen := map[string]struct{}{}
	for _, text := range texts {
		if text == "" {
			t.Fatalf("message should not be empty")
		}
		if _, exists := seen[text]; exists {
			t.Fatalf("message should be unique: %s", text)
		}
		seen[text] = struct{}{}
	}
}

func TestWarningTextMapsKnownIDs(t *testing.T) {
	text := WarningText(motion.Warning{
		ID:     motion.WarningUnknownJointDropped,
		Joint:  "謎ボーン",
		Detail: "3フレーム",
	})
	if text != "骨格に無い関節のトラックを破棄しました: 謎ボーン (3フレーム)" {
		t.Fatalf("warning text mismatch: %s", text)
	}

	text = WarningText(motion.Warning{ID: motion.WarningDuplicateFrameOverwritten, Detail: "2件"})
	if !strings.HasPrefix(text, WarningDuplicateFrameOverwritten) || !strings.Contains(text, "2件") {
		t.Fatalf("warning text mismatch: %s", text)
	}
}

func TestWarningTextKeepsUnknownID(t *testing.T) {
	text := WarningText(motion.Warning{ID: "MotionWarningSomethingNew", Joint: "センター"})
	if text != "MotionWarningSomethingNew: センター" {
		t.Fatalf("unknown id should pass through: %s", text)
	}
}
