package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrapNil(t *testing.T) {
	if err := Wrap(ErrCodeListFailed, "ListFolders", "assets", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestCodeOf(t *testing.T) {
	base := stderrors.New("connection reset")
	err := Wrap(ErrCodeUploadFailed, "Upload", "assets/a.jpg", base)

	if got := CodeOf(err); got != ErrCodeUploadFailed {
		t.Errorf("CodeOf = %q, want %q", got, ErrCodeUploadFailed)
	}
	if !stderrors.Is(err, base) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if CodeOf(base) != "" {
		t.Error("foreign error should report empty code")
	}
}

func TestPredicates(t *testing.T) {
	nf := New(ErrCodeNotFound, "Head", "assets/missing.jpg")
	pre := New(ErrCodePrecondition, "Upload", "assets/a.jpg")

	if !IsNotFound(nf) || IsNotFound(pre) {
		t.Error("IsNotFound misclassified")
	}
	if !IsPrecondition(pre) || IsPrecondition(nf) {
		t.Error("IsPrecondition misclassified")
	}
}

func TestErrorString(t *testing.T) {
	err := Wrap(ErrCodeListFailed, "ListFiles", "assets/video-case1", stderrors.New("403"))
	want := "LIST_FAILED: ListFiles assets/video-case1: 403"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
