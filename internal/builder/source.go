package builder

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// decodeJSON reads a .json or .json.xz file into v.
func decodeJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bberrors.New(bberrors.ErrCodeInvalidSource, "source not found: "+path, err)
		}
		return bberrors.IOFailure("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return bberrors.New(bberrors.ErrCodeInvalidSource, "invalid xz stream: "+path, err)
		}
		r = xr
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return bberrors.New(bberrors.ErrCodeInvalidSource, "invalid JSON source: "+path, err)
	}
	return nil
}

func isSQLite(path string) bool {
	return strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite")
}
