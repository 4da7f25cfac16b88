// 指示: miu200521358
package io_motion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
)

func writeSkeletonFixture(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	return path
}

func TestSkeletonJsonLoadBuildsSkeleton(t *testing.T) {
	path := writeSkeletonFixture(t, "model.json", `{
  "name": "テストモデル",
  "joints": [
    {"name": "センター", "parent": -1},
    {"name": "上半身", "parent": 0},
    {"name": "左腕", "parent": 1},
    {"name": "右腕", "parent": 1}
  ]
}`)
	skeleton, err := NewSkeletonJsonRepository().Load(path)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}
	if skeleton.Name != "テストモデル" {
		t.Fatalf("skeleton name mismatch: %s", skeleton.Name)
	}
	if skeleton.JointCount() != 4 {
		t.Fatalf("joint count mismatch: %d", skeleton.JointCount())
	}
	if skeleton.Joints[0].Parent != motion.ROOT_PARENT_INDEX {
		t.Fatalf("root parent mismatch: %d", skeleton.Joints[0].Parent)
	}
	if skeleton.Joints[3].Name != "右腕" || skeleton.Joints[3].Parent != 1 {
		t.Fatalf("joint 3 mismatch: %+v", skeleton.Joints[3])
	}
	if skeleton.Depth(3) != 2 {
		t.Fatalf("depth mismatch: %d", skeleton.Depth(3))
	}
}

func TestSkeletonJsonLoadDefaultsNameFromFile(t *testing.T) {
	path := writeSkeletonFixture(t, "dancer.json",
		`{"joints": [{"name": "センター", "parent": -1}]}`)
	skeleton, err := NewSkeletonJsonRepository().Load(path)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}
	if skeleton.Name != "dancer" {
		t.Fatalf("name should fall back to the file stem: %s", skeleton.Name)
	}
}

func TestSkeletonJsonLoadRejectsBadParentOrder(t *testing.T) {
	path := writeSkeletonFixture(t, "bad.json", `{
  "name": "x",
  "joints": [
    {"name": "上半身", "parent": 1},
    {"name": "センター", "parent": -1}
  ]
}`)
	if _, err := NewSkeletonJsonRepository().Load(path); !errors.Is(err, io_common.ErrParseFailed) {
		t.Fatalf("child-before-parent should be a parse failure: %v", err)
	}
}

func TestSkeletonJsonLoadRejectsBrokenInput(t *testing.T) {
	repository := NewSkeletonJsonRepository()

	malformed := writeSkeletonFixture(t, "malformed.json", "[broken")
	if _, err := repository.Load(malformed); !errors.Is(err, io_common.ErrParseFailed) {
		t.Fatalf("malformed json should be a parse failure: %v", err)
	}
	if _, err := repository.Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, io_common.ErrFileNotFound) {
		t.Fatalf("missing file should report not found: %v", err)
	}
	if _, err := repository.Load("model.bin"); !errors.Is(err, io_common.ErrExtInvalid) {
		t.Fatalf("wrong extension should be rejected: %v", err)
	}
}
