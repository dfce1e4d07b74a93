// Package assets names the binary asset files, resolves which root holds
// them, and maintains the digest manifest written by the builders.
package assets

import "fmt"

// Asset file names, relative to a root.
const (
	TextFile       = "bible_text.bin"
	IndexFile      = "verse_index.bin"
	ShardMapFile   = "search_shard_map.bin"
	ShardDir       = "search_shards"
	MissalFile     = "missal.bin"
	DevotionalFile = "devotional.bin"
	RosaryFile     = "rosary.bin"
	ConfessionFile = "confession.bin"
	ManifestFile   = "manifest.json"
)

// Required lists the files a root must hold to be selected.
var Required = []string{TextFile, IndexFile}

// ShardFile returns the path of shard id under the root.
func ShardFile(id int) string {
	return fmt.Sprintf("%s/shard_%03d.bin", ShardDir, id)
}
