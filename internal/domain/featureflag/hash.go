package featureflag

import "hash/fnv"

// BucketCount is the number of rollout buckets (0-99)
const BucketCount = 100

// Bucket maps a flag and user onto a stable bucket using FNV-1a over
// "key:userID". The same pair always lands in the same bucket.
func Bucket(flagKey, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(flagKey + ":" + userID))
	return int(h.Sum32() % BucketCount)
}

// InRollout reports whether the user falls inside percent of the rollout
func InRollout(flagKey, userID string, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return Bucket(flagKey, userID) < percent
}
