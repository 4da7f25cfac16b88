// 指示: miu200521358
package io_motion

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbJsonChunkType  = 0x4E4F534A
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize
)

// vrmGltfDocument はVRM骨格の抽出に必要なglTFトップレベル要素を表す。
type vrmGltfDocument struct {
	ExtensionsUsed []string                   `json:"extensionsUsed"`
	Nodes          []vrmGltfNode              `json:"nodes"`
	Extensions     map[string]json.RawMessage `json:"extensions"`
}

// vrmGltfNode はglTF node要素のうち階層の組み立てに使う項目を表す。
type vrmGltfNode struct {
	Name     string `json:"name"`
	Children []int  `json:"children"`
}

// vrm0Extension はVRM0拡張の人型ボーン要素を表す。
type vrm0Extension struct {
	Humanoid struct {
		HumanBones []struct {
			Bone string `json:"bone"`
			Node int    `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// vrm1Extension はVRM1拡張の人型ボーン要素を表す。
type vrm1Extension struct {
	Humanoid struct {
		HumanBones map[string]struct {
			Node *int `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// vrmHumanBone は人型ボーン1件を表す。bone は定義名、node は参照先node index。
type vrmHumanBone struct {
	bone string
	node int
}

// VrmSkeletonRepository はVRMモデルの人型ボーン階層を骨格として読み込む契約を表す。
// メッシュ・材質・テクスチャは読み飛ばし、人型ボーンに含まれるnodeだけを関節にする。
// 関節名はMMD標準ボーン名へ読み替え、VMDモーションのトラックと一致させる。
type VrmSkeletonRepository struct{}

// NewVrmSkeletonRepository はVrmSkeletonRepositoryを生成する。
func NewVrmSkeletonRepository() *VrmSkeletonRepository {
	return &VrmSkeletonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *VrmSkeletonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vrm")
}

// Load はVRMのGLBコンテナからJSONチャンクを取り出し、人型ボーンを
// 親が先に並ぶ骨格へ組み立てる。
func (r *VrmSkeletonRepository) Load(path string) (*motion.Skeleton, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("VRMファイルの読み取りに失敗しました", err)
	}

	jsonChunk, err := parseGlbJsonChunk(b)
	if err != nil {
		return nil, err
	}

	doc := vrmGltfDocument{}
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, io_common.NewIoParseFailed("VRM JSONチャンクの解析に失敗しました", err)
	}

	humanBones, err := extractVrmHumanBones(&doc)
	if err != nil {
		return nil, err
	}
	parents, err := buildVrmNodeParents(doc.Nodes)
	if err != nil {
		return nil, err
	}
	skeleton, err := buildVrmSkeleton(path, doc.Nodes, parents, humanBones)
	if err != nil {
		return nil, err
	}

	logVmdInfo("VRM骨格読込完了: file=%s joints=%d", filepath.Base(path), skeleton.JointCount())
	return skeleton, nil
}

// parseGlbJsonChunk はGLBバイナリからJSONチャンクを取り出す。
func parseGlbJsonChunk(b []byte) ([]byte, error) {
	if len(b) < glbMinValidLength {
		return nil, io_common.NewIoParseFailed("GLBヘッダが不足しています", nil)
	}
	if binary.LittleEndian.Uint32(b[0:4]) != glbMagic {
		return nil, io_common.NewIoParseFailed("GLBマジックが不正です", nil)
	}
	version := binary.LittleEndian.Uint32(b[4:8])
	if version != 2 {
		return nil, io_common.NewIoFormatNotSupported("GLBバージョンが未対応です: %d", nil, version)
	}
	if binary.LittleEndian.Uint32(b[8:12]) > uint32(len(b)) {
		return nil, io_common.NewIoParseFailed("GLB全体長が不正です", nil)
	}

	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= len(b) {
		chunkLength := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(b[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > len(b) {
			return nil, io_common.NewIoParseFailed("GLBチャンク長が不正です", nil)
		}
		if chunkType == glbJsonChunkType {
			return b[chunkStart:chunkEnd], nil
		}
		offset = chunkEnd
	}
	return nil, io_common.NewIoParseFailed("GLB JSONチャンクが見つかりません", nil)
}

// extractVrmHumanBones はVRM拡張から人型ボーン一覧を取り出す。VRM1を優先する。
func extractVrmHumanBones(doc *vrmGltfDocument) ([]vrmHumanBone, error) {
	if raw, ok := doc.Extensions["VRMC_vrm"]; ok {
		ext := vrm1Extension{}
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, io_common.NewIoParseFailed("VRM1拡張の解析に失敗しました", err)
		}
		bones := make([]vrmHumanBone, 0, len(ext.Humanoid.HumanBones))
		for bone, entry := range ext.Humanoid.HumanBones {
			if entry.Node == nil {
				continue
			}
			bones = append(bones, vrmHumanBone{bone: bone, node: *entry.Node})
		}
		// map走査順は不定なので、node indexで並びを安定させる。
		sort.Slice(bones, func(i, j int) bool { return bones[i].node < bones[j].node })
		if len(bones) == 0 {
			return nil, io_common.NewIoParseFailed("人型ボーンが定義されていません", nil)
		}
		return bones, nil
	}
	if raw, ok := doc.Extensions["VRM"]; ok {
		ext := vrm0Extension{}
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, io_common.NewIoParseFailed("VRM0拡張の解析に失敗しました", err)
		}
		bones := make([]vrmHumanBone, 0, len(ext.Humanoid.HumanBones))
		for _, entry := range ext.Humanoid.HumanBones {
			bones = append(bones, vrmHumanBone{bone: entry.Bone, node: entry.Node})
		}
		if len(bones) == 0 {
			return nil, io_common.NewIoParseFailed("人型ボーンが定義されていません", nil)
		}
		return bones, nil
	}
	return nil, io_common.NewIoFormatNotSupported("VRM拡張が見つかりません", nil)
}

// buildVrmNodeParents はnode配列から親インデックス配列を生成する。
func buildVrmNodeParents(nodes []vrmGltfNode) ([]int, error) {
	parents := make([]int, len(nodes))
	for i := range parents {
		parents[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, io_common.NewIoParseFailed("node.children のindexが不正です: %d", nil, childIndex)
			}
			if parents[childIndex] == -1 {
				parents[childIndex] = parentIndex
			}
		}
	}
	return parents, nil
}

// buildVrmSkeleton は人型ボーンに含まれるnodeを深さ順に並べた骨格を組み立てる。
// 人型ボーンに含まれない中間nodeは畳み込み、最も近い人型ボーン祖先を親にする。
// 関節名はMMD標準ボーン名を優先し、対応規則がないnodeはnode名、それも無ければ定義名を使う。
func buildVrmSkeleton(path string, nodes []vrmGltfNode, parents []int, humanBones []vrmHumanBone) (*motion.Skeleton, error) {
	memberNames := make(map[int]string, len(humanBones))
	for _, bone := range humanBones {
		if bone.node < 0 || bone.node >= len(nodes) {
			return nil, io_common.NewIoParseFailed("人型ボーンのnode indexが不正です: bone=%s node=%d",
				nil, bone.bone, bone.node)
		}
		if _, ok := memberNames[bone.node]; !ok {
			memberNames[bone.node] = bone.bone
		}
	}
	namePlan := buildHumanoidNamePlan(humanBones)

	indexes := make([]int, 0, len(memberNames))
	depths := make(map[int]int, len(memberNames))
	for node := range memberNames {
		depth, err := vrmNodeDepth(parents, node)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, node)
		depths[node] = depth
	}
	sort.Slice(indexes, func(i, j int) bool {
		if depths[indexes[i]] != depths[indexes[j]] {
			return depths[indexes[i]] < depths[indexes[j]]
		}
		return indexes[i] < indexes[j]
	})

	jointIndexes := make(map[int]int, len(indexes))
	joints := make([]motion.Joint, 0, len(indexes))
	for i, node := range indexes {
		jointIndexes[node] = i
		name := namePlan[node]
		if name == "" {
			name = nodes[node].Name
		}
		if name == "" {
			name = memberNames[node]
		}
		parent := motion.ROOT_PARENT_INDEX
		for ancestor := parents[node]; ancestor != -1; ancestor = parents[ancestor] {
			if jointIndex, ok := jointIndexes[ancestor]; ok {
				parent = jointIndex
				break
			}
		}
		joints = append(joints, motion.Joint{Name: name, Parent: parent})
	}

	skeleton := &motion.Skeleton{
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Joints: joints,
	}
	if err := skeleton.Validate(); err != nil {
		return nil, io_common.NewIoParseFailed("VRM骨格の内容が不正です", err)
	}
	return skeleton, nil
}

// vrmNodeDepth はルートからの深さを返す。親子関係の循環は誤りとして扱う。
func vrmNodeDepth(parents []int, node int) (int, error) {
	depth := 0
	for current := parents[node]; current != -1; current = parents[current] {
		depth++
		if depth > len(parents) {
			return 0, io_common.NewIoParseFailed("node親子関係に循環があります: node=%d", nil, node)
		}
	}
	return depth, nil
}

// moutput の契約を満たしていることを型レベルで確認する。
var _ moutput.ISkeletonReader = (*VrmSkeletonRepository)(nil)
