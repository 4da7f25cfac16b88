// 指示: miu200521358
package io_motion

import "strings"

// humanoidBoneNameRule はVRM人型ボーン定義名からMMD標準ボーン名への変換ルールを表す。
type humanoidBoneNameRule struct {
	HumanoidName string
	TargetName   string
	Priority     int
}

// selectedHumanoidEntry は同名競合時に採用するnode情報を表す。
type selectedHumanoidEntry struct {
	NodeIndex int
	Priority  int
}

// humanoidBoneNameRules は人型ボーン定義名とMMD標準ボーン名の対応を保持する。
// VMDのボーン名と揃えることで、VRM骨格に対してもトラックを対応付けられる。
// chest/upperChest のように複数の定義名が同名へ対応する場合はPriorityの高い方を採用する。
// thumbDistal の負のPriorityはVRM0旧表記の救済で、intermediate があればそちらを優先する。
var humanoidBoneNameRules = []humanoidBoneNameRule{
	{HumanoidName: "hips", TargetName: "下半身", Priority: 0},
	{HumanoidName: "spine", TargetName: "上半身", Priority: 0},
	{HumanoidName: "chest", TargetName: "上半身2", Priority: 5},
	{HumanoidName: "upperchest", TargetName: "上半身2", Priority: 10},
	{HumanoidName: "neck", TargetName: "首", Priority: 0},
	{HumanoidName: "head", TargetName: "頭", Priority: 0},
	{HumanoidName: "leftshoulder", TargetName: "左肩", Priority: 0},
	{HumanoidName: "rightshoulder", TargetName: "右肩", Priority: 0},
	{HumanoidName: "leftupperarm", TargetName: "左腕", Priority: 0},
	{HumanoidName: "rightupperarm", TargetName: "右腕", Priority: 0},
	{HumanoidName: "leftlowerarm", TargetName: "左ひじ", Priority: 0},
	{HumanoidName: "rightlowerarm", TargetName: "右ひじ", Priority: 0},
	{HumanoidName: "lefthand", TargetName: "左手首", Priority: 0},
	{HumanoidName: "righthand", TargetName: "右手首", Priority: 0},
	{HumanoidName: "leftupperleg", TargetName: "左足", Priority: 0},
	{HumanoidName: "rightupperleg", TargetName: "右足", Priority: 0},
	{HumanoidName: "leftlowerleg", TargetName: "左ひざ", Priority: 0},
	{HumanoidName: "rightlowerleg", TargetName: "右ひざ", Priority: 0},
	{HumanoidName: "leftfoot", TargetName: "左足首", Priority: 0},
	{HumanoidName: "rightfoot", TargetName: "右足首", Priority: 0},
	{HumanoidName: "lefttoes", TargetName: "左つま先", Priority: 0},
	{HumanoidName: "righttoes", TargetName: "右つま先", Priority: 0},
	{HumanoidName: "lefteye", TargetName: "左目", Priority: 0},
	{HumanoidName: "righteye", TargetName: "右目", Priority: 0},
	{HumanoidName: "jaw", TargetName: "あご", Priority: 0},
	{HumanoidName: "leftthumbmetacarpal", TargetName: "左親指０", Priority: 0},
	{HumanoidName: "leftthumbproximal", TargetName: "左親指１", Priority: 0},
	{HumanoidName: "leftthumbintermediate", TargetName: "左親指２", Priority: 0},
	{HumanoidName: "leftthumbdistal", TargetName: "左親指２", Priority: -1},
	{HumanoidName: "rightthumbmetacarpal", TargetName: "右親指０", Priority: 0},
	{HumanoidName: "rightthumbproximal", TargetName: "右親指１", Priority: 0},
	{HumanoidName: "rightthumbintermediate", TargetName: "右親指２", Priority: 0},
	{HumanoidName: "rightthumbdistal", TargetName: "右親指２", Priority: -1},
	{HumanoidName: "leftindexproximal", TargetName: "左人指１", Priority: 0},
	{HumanoidName: "leftindexintermediate", TargetName: "左人指２", Priority: 0},
	{HumanoidName: "leftindexdistal", TargetName: "左人指３", Priority: 0},
	{HumanoidName: "rightindexproximal", TargetName: "右人指１", Priority: 0},
	{HumanoidName: "rightindexintermediate", TargetName: "右人指２", Priority: 0},
	{HumanoidName: "rightindexdistal", TargetName: "右人指３", Priority: 0},
	{HumanoidName: "leftmiddleproximal", TargetName: "左中指１", Priority: 0},
	{HumanoidName: "leftmiddleintermediate", TargetName: "左中指２", Priority: 0},
	{HumanoidName: "leftmiddledistal", TargetName: "左中指３", Priority: 0},
	{HumanoidName: "rightmiddleproximal", TargetName: "右中指１", Priority: 0},
	{HumanoidName: "rightmiddleintermediate", TargetName: "右中指２", Priority: 0},
	{HumanoidName: "rightmiddledistal", TargetName: "右中指３", Priority: 0},
	{HumanoidName: "leftringproximal", TargetName: "左薬指１", Priority: 0},
	{HumanoidName: "leftringintermediate", TargetName: "左薬指２", Priority: 0},
	{HumanoidName: "leftringdistal", TargetName: "左薬指３", Priority: 0},
	{HumanoidName: "rightringproximal", TargetName: "右薬指１", Priority: 0},
	{HumanoidName: "rightringintermediate", TargetName: "右薬指２", Priority: 0},
	{HumanoidName: "rightringdistal", TargetName: "右薬指３", Priority: 0},
	{HumanoidName: "leftlittleproximal", TargetName: "左小指１", Priority: 0},
	{HumanoidName: "leftlittleintermediate", TargetName: "左小指２", Priority: 0},
	{HumanoidName: "leftlittledistal", TargetName: "左小指３", Priority: 0},
	{HumanoidName: "rightlittleproximal", TargetName: "右小指１", Priority: 0},
	{HumanoidName: "rightlittleintermediate", TargetName: "右小指２", Priority: 0},
	{HumanoidName: "rightlittledistal", TargetName: "右小指３", Priority: 0},
}

// buildHumanoidNamePlan は人型ボーン一覧からnode indexごとのMMD標準ボーン名を決める。
// 定義名は大文字小文字と前後空白を無視して照合し、対応規則がない定義名は計画に含めない。
// 同名競合はPriority優先、同Priorityではnode indexの小さい方を採用する。
func buildHumanoidNamePlan(humanBones []vrmHumanBone) map[int]string {
	humanoid := make(map[string]int, len(humanBones))
	for _, bone := range humanBones {
		name := strings.ToLower(strings.TrimSpace(bone.bone))
		if name == "" || bone.node < 0 {
			continue
		}
		humanoid[name] = bone.node
	}

	selected := map[string]selectedHumanoidEntry{}
	for _, rule := range humanoidBoneNameRules {
		nodeIndex, exists := humanoid[rule.HumanoidName]
		if !exists {
			continue
		}
		if current, exists := selected[rule.TargetName]; exists {
			if rule.Priority < current.Priority {
				continue
			}
			if rule.Priority == current.Priority && nodeIndex >= current.NodeIndex {
				continue
			}
		}
		selected[rule.TargetName] = selectedHumanoidEntry{
			NodeIndex: nodeIndex,
			Priority:  rule.Priority,
		}
	}

	plan := make(map[int]string, len(selected))
	for _, rule := range humanoidBoneNameRules {
		entry, exists := selected[rule.TargetName]
		if !exists || entry.Priority != rule.Priority {
			continue
		}
		if nodeIndex, exists := humanoid[rule.HumanoidName]; !exists || nodeIndex != entry.NodeIndex {
			continue
		}
		// 複数の定義名が同一nodeを指す場合は、規則表で先に並ぶ名前を採用する。
		if _, taken := plan[entry.NodeIndex]; !taken {
			plan[entry.NodeIndex] = rule.TargetName
		}
	}
	return plan
}
