// 指示: miu200521358
package motion

import "fmt"

// ROOT_PARENT_INDEX はルート関節の親インデックスを表す。
const ROOT_PARENT_INDEX = -1

// Joint は骨格の1関節を表す。
type Joint struct {
	Name   string
	Parent int
}

// Skeleton は親が子より先に並ぶ骨格を表す。
type Skeleton struct {
	Name   string
	Joints []Joint
}

// JointCount は関節数を返す。
func (skeleton *Skeleton) JointCount() int {
	if skeleton == nil {
		return 0
	}
	return len(skeleton.Joints)
}

// Validate は骨格の親子関係がトポロジカル順であるかを検証する。
func (skeleton *Skeleton) Validate() error {
	if skeleton == nil {
		return fmt.Errorf("骨格が未設定です")
	}
	for i, joint := range skeleton.Joints {
		if joint.Parent == ROOT_PARENT_INDEX {
			continue
		}
		if joint.Parent < 0 || joint.Parent >= i {
			return fmt.Errorf("親関節は子関節より先に並ぶ必要があります: joint=%s index=%d parent=%d",
				joint.Name, i, joint.Parent)
		}
	}
	return nil
}

// Depth はルートから指定関節までの深さを返す。ルートは0。
func (skeleton *Skeleton) Depth(index int) int {
	depth := 0
	for parent := skeleton.Joints[index].Parent; parent != ROOT_PARENT_INDEX; parent = skeleton.Joints[parent].Parent {
		depth++
	}
	return depth
}
