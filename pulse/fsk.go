package pulse

// segment is one contiguous run classified into the low (1) or high (2)
// frequency cluster.
type segment struct {
	cluster int
	length  int32
}

// fskTracker is the two-cluster online classifier from the FSK tracking
// component: it keeps running means for the low/high frequency clusters,
// updated by samples exceeding/falling below the running midpoint
// between them, and buckets the FM stream into alternating segments.
type fskTracker struct {
	haveMid bool
	mid     int32

	f1Sum, f1Count int64
	f2Sum, f2Count int64

	varianceSum float64
	sampleCount int64

	lastCluster int // 0 = none yet, 1 or 2 otherwise
	segLen      int32
	segments    []segment
}

func (f *fskTracker) reset() {
	*f = fskTracker{}
}

// observe folds one FM sample into the tracker.
func (f *fskTracker) observe(sample int16) {
	x := int32(sample)
	if !f.haveMid {
		f.mid = x
		f.haveMid = true
	}

	cluster := 1
	if x > f.mid {
		cluster = 2
		f.f2Sum += int64(x)
		f.f2Count++
	} else {
		f.f1Sum += int64(x)
		f.f1Count++
	}

	switch {
	case f.f1Count > 0 && f.f2Count > 0:
		f.mid = int32((f.f1Sum/f.f1Count + f.f2Sum/f.f2Count) / 2)
	case f.f1Count > 0:
		// Only one cluster seen so far: track the mean of every sample, so
		// a later sample above it seeds the second cluster.
		f.mid = int32(f.f1Sum / f.f1Count)
	}

	switch f.lastCluster {
	case 0:
		f.lastCluster = cluster
		f.segLen = 1
	case cluster:
		f.segLen++
	default:
		f.segments = append(f.segments, segment{f.lastCluster, f.segLen})
		f.lastCluster = cluster
		f.segLen = 1
	}

	f.sampleCount++
	d := float64(x) - float64(f.mid)
	f.varianceSum += d * d
}

// fskVarianceThreshold is the minimum per-sample variance (in FM buffer
// units squared) required before FSK is preferred over OOK; below this,
// the two "clusters" are really just OOK threshold noise and OOK wins.
const fskVarianceThreshold = 64.0

// finish closes out the tracker and reports whether the observed FM
// stream classifies as FSK, the two cluster averages, and the
// alternating segment list.
func (f *fskTracker) finish() (isFSK bool, f1Est, f2Est int32, segments []segment) {
	if f.segLen > 0 {
		f.segments = append(f.segments, segment{f.lastCluster, f.segLen})
	}
	segments = f.segments
	if f.f1Count == 0 || f.f2Count == 0 || f.sampleCount == 0 {
		return false, 0, 0, segments
	}
	f1Est = int32(f.f1Sum / f.f1Count)
	f2Est = int32(f.f2Sum / f.f2Count)
	if f1Est == f2Est {
		return false, f1Est, f2Est, segments
	}
	variance := f.varianceSum / float64(f.sampleCount)
	isFSK = variance >= fskVarianceThreshold
	return isFSK, f1Est, f2Est, segments
}

// packSegments pairs up alternating segments into (pulse, gap) style
// arrays, matching Data's paired-array shape. A trailing unpaired
// segment is dropped.
func packSegments(segments []segment) (pulses, gaps []int32) {
	n := len(segments) / 2
	pulses = make([]int32, n)
	gaps = make([]int32, n)
	for i := 0; i < n; i++ {
		pulses[i] = segments[2*i].length
		gaps[i] = segments[2*i+1].length
	}
	return pulses, gaps
}
