// Package utils holds small helpers shared by the HTTP layer that carry no
// domain knowledge.
package utils

// ClampPageSize caps a requested page size at max. A non-positive max
// disables the cap.
//
//	utils.ClampPageSize(500, 100) // 100
//	utils.ClampPageSize(30, 0)    // 30
func ClampPageSize(n, max int) int {
	if max > 0 && n > max {
		return max
	}
	return n
}

// TotalPages is the number of pages of size needed for total rows. An empty
// result still has one page; a non-positive size yields 0.
//
//	utils.TotalPages(555, 30) // 19
//	utils.TotalPages(0, 30)   // 1
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}
