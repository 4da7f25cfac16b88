// 指示: miu200521358
package mconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
	"gopkg.in/Knetic/govaluate.v3"
)

// JointRule は関節名のグロブパターンに一致した関節へ適用する上書き規則を表す。
// Tolerance と Distance は数式文字列で、省略した項目は直前までの値を保つ。
// 数式では default_tolerance / default_distance / depth / index / joint_count を参照できる。
type JointRule struct {
	Match     string `json:"match"`
	Tolerance string `json:"tolerance,omitempty"`
	Distance  string `json:"distance,omitempty"`
}

// JointRuleSet は上書き規則の並びを表す。複数規則に一致した関節は後の規則で上書きされる。
type JointRuleSet struct {
	Rules []JointRule `json:"rules"`
}

// LoadJointRules は上書き規則JSONを読み込み、パターンと数式を検証する。
func LoadJointRules(path string) (*JointRuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("上書き規則の読み取りに失敗しました: path=%s: %w", path, err)
	}
	ruleSet := &JointRuleSet{}
	if err := json.Unmarshal(b, ruleSet); err != nil {
		return nil, fmt.Errorf("上書き規則の解析に失敗しました: path=%s: %w", path, err)
	}
	if err := ruleSet.Validate(); err != nil {
		return nil, fmt.Errorf("上書き規則が不正です: path=%s: %w", path, err)
	}
	return ruleSet, nil
}

// Validate は全規則のパターンと数式が解釈可能かを検証する。
func (ruleSet *JointRuleSet) Validate() error {
	for i, rule := range ruleSet.Rules {
		if rule.Match == "" {
			return fmt.Errorf("規則 %d: match が未設定です", i)
		}
		if _, err := path.Match(rule.Match, "検証"); err != nil {
			return fmt.Errorf("規則 %d: パターンが不正です: pattern=%s: %w", i, rule.Match, err)
		}
		for _, source := range []string{rule.Tolerance, rule.Distance} {
			if source == "" {
				continue
			}
			if _, err := govaluate.NewEvaluableExpression(source); err != nil {
				return fmt.Errorf("規則 %d: 式の解釈に失敗しました: expression=%s: %w", i, source, err)
			}
		}
	}
	return nil
}

// BuildJointOverrides は規則を骨格へ適用し、関節別の上書き設定を組み立てる。
// どの規則にも一致しなかった関節は上書きされない。
func BuildJointOverrides(ruleSet *JointRuleSet, skeleton *motion.Skeleton, base minteractor.Setting) (minteractor.JointsSetting, error) {
	if ruleSet == nil || len(ruleSet.Rules) == 0 {
		return minteractor.JointsSetting{}, nil
	}
	if skeleton == nil {
		return nil, fmt.Errorf("骨格が未設定です")
	}

	overrides := minteractor.JointsSetting{}
	for i := range skeleton.Joints {
		jointName := skeleton.Joints[i].Name
		params := map[string]interface{}{
			"default_tolerance": base.Tolerance,
			"default_distance":  base.Distance,
			"depth":             float64(skeleton.Depth(i)),
			"index":             float64(i),
			"joint_count":       float64(skeleton.JointCount()),
		}

		setting := base
		matched := false
		for _, rule := range ruleSet.Rules {
			ok, err := path.Match(rule.Match, jointName)
			if err != nil {
				return nil, fmt.Errorf("パターンが不正です: pattern=%s: %w", rule.Match, err)
			}
			if !ok {
				continue
			}
			matched = true
			if rule.Tolerance != "" {
				value, err := evaluateRuleExpression(rule.Tolerance, params)
				if err != nil {
					return nil, fmt.Errorf("関節 %s の許容誤差式が評価できません: %w", jointName, err)
				}
				setting.Tolerance = value
			}
			if rule.Distance != "" {
				value, err := evaluateRuleExpression(rule.Distance, params)
				if err != nil {
					return nil, fmt.Errorf("関節 %s の評価半径式が評価できません: %w", jointName, err)
				}
				setting.Distance = value
			}
		}
		if !matched {
			continue
		}
		if err := setting.Validate(); err != nil {
			return nil, fmt.Errorf("関節 %s の上書き設定が不正です: %w", jointName, err)
		}
		overrides[i] = setting
	}
	return overrides, nil
}

// evaluateRuleExpression は数式を評価して数値を返す。
func evaluateRuleExpression(source string, params map[string]interface{}) (float64, error) {
	expression, err := govaluate.NewEvaluableExpression(source)
	if err != nil {
		return 0, fmt.Errorf("式の解釈に失敗しました: expression=%s: %w", source, err)
	}
	result, err := expression.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("式の評価に失敗しました: expression=%s: %w", source, err)
	}
	value, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("式の結果が数値ではありません: expression=%s result=%v", source, result)
	}
	return value, nil
}
