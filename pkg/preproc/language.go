package preproc

import "path/filepath"

// fortranExtensions lists the file extensions BuildSourceTree treats as
// Fortran, all read with the free-form line rules; everything else is
// treated as the C family.
var fortranExtensions = map[string]bool{
	".f90": true, ".F90": true,
	".f": true, ".ftn": true, ".fpp": true,
	".F": true, ".FOR": true, ".FTN": true, ".FPP": true,
}

// languageOf returns "fortran" or "c" for path, by extension.
func languageOf(path string) string {
	if fortranExtensions[filepath.Ext(path)] {
		return "fortran"
	}
	return "c"
}
