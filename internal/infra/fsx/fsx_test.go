package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func assertNoTemp(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+name+".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFile_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out", "page.html")

	if err := WriteFile(dst, []byte("hello"), false); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	assertNoTemp(t, filepath.Dir(dst), "page.html")
}

func TestWriteFile_ExistingRequiresReplace(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	err := WriteFile(dst, []byte("new"), false)
	var ee *ExistsError
	if !errors.As(err, &ee) || !errors.Is(err, os.ErrExist) || !IsConflict(err) {
		t.Fatalf("期望 ExistsError，实际：%T %v", err, err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "old" {
		t.Fatalf("不允许覆盖时不应修改原文件：%q", string(b))
	}

	if err := WriteFile(dst, []byte("new"), true); err != nil {
		t.Fatalf("replace=true 不期望错误：%v", err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "new" {
		t.Fatalf("覆盖后内容不一致：%q", string(b))
	}
}

func TestWriteFile_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), false); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	assertNoTemp(t, dir, "a.txt")
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("不应写出最终文件")
	}
}

func TestWriteFile_TargetConflictDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "a.txt"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	for _, replace := range []bool{false, true} {
		err := WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), replace)
		var pe *PathTypeConflictError
		if !errors.As(err, &pe) {
			t.Fatalf("replace=%v 期望 PathTypeConflictError，实际：%T %v", replace, err, err)
		}
	}
}
