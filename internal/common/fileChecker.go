package common

import "os"

func FileExistsAndIsReadable(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil || info.IsDir() {
		return false
	}
	// Файл существует, проверяем, может ли он быть прочитан
	file, err := os.Open(filename)
	if err != nil {
		return false
	}
	defer file.Close()
	return true
}
