// 指示: miu200521358
package io_motion

import "testing"

func TestHumanoidNamePlanMapsStandardBones(t *testing.T) {
	plan := buildHumanoidNamePlan([]vrmHumanBone{
		{bone: "hips", node: 0},
		{bone: "Spine", node: 1},
		{bone: " LeftUpperArm ", node: 2},
		{bone: "rightLowerLeg", node: 3},
		{bone: "leftIndexDistal", node: 4},
	})
	expected := map[int]string{
		0: "下半身",
		1: "上半身",
		2: "左腕",
		3: "右ひざ",
		4: "左人指３",
	}
	if len(plan) != len(expected) {
		t.Fatalf("plan size mismatch: %d != %d", len(plan), len(expected))
	}
	for node, name := range expected {
		if plan[node] != name {
			t.Fatalf("plan mismatch: node=%d got=%s want=%s", node, plan[node], name)
		}
	}
}

func TestHumanoidNamePlanPrefersUpperChest(t *testing.T) {
	plan := buildHumanoidNamePlan([]vrmHumanBone{
		{bone: "chest", node: 3},
		{bone: "upperChest", node: 4},
	})
	if plan[4] != "上半身2" {
		t.Fatalf("upperChest should win 上半身2: %v", plan)
	}
	if _, exists := plan[3]; exists {
		t.Fatalf("chest should lose to upperChest: %v", plan)
	}

	plan = buildHumanoidNamePlan([]vrmHumanBone{
		{bone: "chest", node: 3},
	})
	if plan[3] != "上半身2" {
		t.Fatalf("chest alone should take 上半身2: %v", plan)
	}
}

func TestHumanoidNamePlanResolvesThumbNotation(t *testing.T) {
	// VRM1表記: metacarpal/proximal/distal。
	plan := buildHumanoidNamePlan([]vrmHumanBone{
		{bone: "leftThumbMetacarpal", node: 10},
		{bone: "leftThumbProximal", node: 11},
		{bone: "leftThumbDistal", node: 12},
	})
	if plan[10] != "左親指０" || plan[11] != "左親指１" || plan[12] != "左親指２" {
		t.Fatalf("vrm1 thumb mapping mismatch: %v", plan)
	}

	// VRM0表記: proximal/intermediate/distal。distalは割り当てから外れる。
	plan = buildHumanoidNamePlan([]vrmHumanBone{
		{bone: "leftThumbProximal", node: 11},
		{bone: "leftThumbIntermediate", node: 12},
		{bone: "leftThumbDistal", node: 13},
	})
	if plan[11] != "左親指１" || plan[12] != "左親指２" {
		t.Fatalf("vrm0 thumb mapping mismatch: %v", plan)
	}
	if _, exists := plan[13]; exists {
		t.Fatalf("vrm0 thumb distal should lose to intermediate: %v", plan)
	}
}

func TestHumanoidNamePlanSkipsInvalidEntries(t *testing.T) {
	plan := buildHumanoidNamePlan([]vrmHumanBone{
		{bone: "", node: 0},
		{bone: "hips", node: -1},
		{bone: "unknownBone", node: 1},
		{bone: "head", node: 2},
	})
	if len(plan) != 1 || plan[2] != "頭" {
		t.Fatalf("only head should be planned: %v", plan)
	}
}
