package detect

import (
	smartcrop "github.com/vidflow/go-smartcrop"
)

// quickSortIndiceInverse is a quick sort algorithm that sorts the scores
// vector descending and synchronously updates the indices vector to track
// the reordering of elements
func quickSortIndiceInverse(input []float32, left int, right int, indices []int) int {

	var key float32
	var keyIndex int

	low := left
	high := right

	if left < right {
		keyIndex = indices[left]
		key = input[left]

		for low < high {
			for low < high && input[high] <= key {
				high--
			}

			input[low] = input[high]
			indices[low] = indices[high]

			for low < high && input[low] >= key {
				low++
			}

			input[high] = input[low]
			indices[high] = indices[low]
		}

		input[low] = key
		indices[low] = keyIndex

		quickSortIndiceInverse(input, left, low-1, indices)
		quickSortIndiceInverse(input, low+1, right, indices)
	}

	return low
}

// nms implements a Non-Maximum Suppression (NMS) pass over the detected
// boxes so overlapping duplicate detections collapse to one per physical
// object.  Suppression only applies between boxes of the same class.
// Returns the indices of the kept boxes in descending score order
func nms(boxes []smartcrop.BoundingBox, scores []float32, classIDs []int,
	threshold float32) []int {

	validCount := len(boxes)

	if validCount == 0 {
		return nil
	}

	order := make([]int, validCount)

	for i := 0; i < validCount; i++ {
		order[i] = i
	}

	// sort scores descending keeping order in sync
	sorted := make([]float32, validCount)
	copy(sorted, scores)
	quickSortIndiceInverse(sorted, 0, validCount-1, order)

	for i := 0; i < validCount; i++ {

		n := order[i]

		if n == -1 {
			continue
		}

		for j := i + 1; j < validCount; j++ {

			m := order[j]

			if m == -1 || classIDs[n] != classIDs[m] {
				continue
			}

			if boxes[n].CalcIoU(boxes[m]) > threshold {
				order[j] = -1
			}
		}
	}

	var keep []int

	for _, idx := range order {
		if idx != -1 {
			keep = append(keep, idx)
		}
	}

	return keep
}
