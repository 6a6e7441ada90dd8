package dicomdata

// preambleLength is the 128-byte DICOM preamble followed by the 4-byte
// "DICM" magic.
const preambleLength = 132

// IsDicom reports whether buf starts with a DICOM preamble. This is a
// structural check on the bytes and overrides whatever the filename
// extension claims.
func IsDicom(buf []byte) bool {
	if len(buf) < preambleLength {
		return false
	}
	return string(buf[128:132]) == "DICM"
}
