package encinfo

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
)

const (
	// NamespaceEncryption is the namespace of the <encryption> root element.
	NamespaceEncryption = "http://schemas.microsoft.com/office/2006/encryption"
	// URIPasswordKeyEncryptor is the keyEncryptor uri of the password
	// key encryptor, the only one we can use.
	URIPasswordKeyEncryptor = "http://schemas.microsoft.com/office/2006/keyEncryptor/password"
)

// KeyData holds the cipher parameters shared by all key encryptors. These
// are the parameters the package itself is encrypted with.
type KeyData struct {
	SaltSize        int
	BlockSize       int
	KeyBits         int
	HashSize        int
	CipherAlgorithm string
	CipherChaining  string
	HashAlgorithm   string
	SaltValue       []byte
}

// KeyEncryptor is the password key encryptor. It carries the package key
// encrypted with a key derived from the password.
type KeyEncryptor struct {
	KeyData
	SpinCount                  uint32
	EncryptedVerifierHashInput []byte
	EncryptedVerifierHashValue []byte
	EncryptedKeyValue          []byte
}

// DataIntegrity holds the encrypted HMAC key and value over the
// EncryptedPackage stream.
type DataIntegrity struct {
	EncryptedHMACKey   []byte
	EncryptedHMACValue []byte
}

// Descriptor is the parsed EncryptionInfo stream. It is never modified
// after Parse returns.
type Descriptor struct {
	Version  Version
	Reserved uint32
	KeyData  KeyData
	// DataIntegrity is nil if the stream has no <dataIntegrity> element.
	DataIntegrity *DataIntegrity
	KeyEncryptor  KeyEncryptor
}

// XML mapping. Child elements are matched by local name only, so the
// "p:" prefix on encryptedKey does not matter here.
type xmlEncryption struct {
	XMLName       xml.Name          `xml:"http://schemas.microsoft.com/office/2006/encryption encryption"`
	KeyData       *xmlKeyData       `xml:"keyData"`
	DataIntegrity *xmlDataIntegrity `xml:"dataIntegrity"`
	KeyEncryptors []xmlKeyEncryptor `xml:"keyEncryptors>keyEncryptor"`
}

type xmlKeyData struct {
	SaltSize        int    `xml:"saltSize,attr"`
	BlockSize       int    `xml:"blockSize,attr"`
	KeyBits         int    `xml:"keyBits,attr"`
	HashSize        int    `xml:"hashSize,attr"`
	CipherAlgorithm string `xml:"cipherAlgorithm,attr"`
	CipherChaining  string `xml:"cipherChaining,attr"`
	HashAlgorithm   string `xml:"hashAlgorithm,attr"`
	SaltValue       string `xml:"saltValue,attr"`
}

type xmlDataIntegrity struct {
	EncryptedHMACKey   string `xml:"encryptedHmacKey,attr"`
	EncryptedHMACValue string `xml:"encryptedHmacValue,attr"`
}

type xmlKeyEncryptor struct {
	URI          string           `xml:"uri,attr"`
	EncryptedKey *xmlEncryptedKey `xml:"encryptedKey"`
}

type xmlEncryptedKey struct {
	xmlKeyData
	SpinCount                  uint32 `xml:"spinCount,attr"`
	EncryptedVerifierHashInput string `xml:"encryptedVerifierHashInput,attr"`
	EncryptedVerifierHashValue string `xml:"encryptedVerifierHashValue,attr"`
	EncryptedKeyValue          string `xml:"encryptedKeyValue,attr"`
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

func parseXML(data []byte) (*Descriptor, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var x xmlEncryption
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncryptionInfo, err)
	}
	if x.KeyData == nil {
		return nil, fmt.Errorf("%w: missing <keyData>", ErrInvalidEncryptionInfo)
	}
	var d Descriptor
	var err error
	if d.KeyData, err = x.KeyData.decode("keyData"); err != nil {
		return nil, err
	}
	if x.DataIntegrity != nil {
		di := &DataIntegrity{}
		if di.EncryptedHMACKey, err = decodeB64("dataIntegrity", "encryptedHmacKey", x.DataIntegrity.EncryptedHMACKey); err != nil {
			return nil, err
		}
		if di.EncryptedHMACValue, err = decodeB64("dataIntegrity", "encryptedHmacValue", x.DataIntegrity.EncryptedHMACValue); err != nil {
			return nil, err
		}
		d.DataIntegrity = di
	}
	var ek *xmlEncryptedKey
	for i := range x.KeyEncryptors {
		if x.KeyEncryptors[i].URI == URIPasswordKeyEncryptor && x.KeyEncryptors[i].EncryptedKey != nil {
			ek = x.KeyEncryptors[i].EncryptedKey
			break
		}
	}
	if ek == nil {
		return nil, fmt.Errorf("%w: no password key encryptor", ErrInvalidEncryptionInfo)
	}
	if d.KeyEncryptor.KeyData, err = ek.xmlKeyData.decode("encryptedKey"); err != nil {
		return nil, err
	}
	d.KeyEncryptor.SpinCount = ek.SpinCount
	if d.KeyEncryptor.EncryptedKeyValue, err = decodeB64("encryptedKey", "encryptedKeyValue", ek.EncryptedKeyValue); err != nil {
		return nil, err
	}
	// The verifier fields are only needed for the optional password check.
	// An absent attribute decodes to an empty slice.
	if d.KeyEncryptor.EncryptedVerifierHashInput, err = decodeB64("encryptedKey", "encryptedVerifierHashInput", ek.EncryptedVerifierHashInput); err != nil {
		return nil, err
	}
	if d.KeyEncryptor.EncryptedVerifierHashValue, err = decodeB64("encryptedKey", "encryptedVerifierHashValue", ek.EncryptedVerifierHashValue); err != nil {
		return nil, err
	}
	return &d, nil
}

func (x *xmlKeyData) decode(elem string) (KeyData, error) {
	salt, err := decodeB64(elem, "saltValue", x.SaltValue)
	if err != nil {
		return KeyData{}, err
	}
	return KeyData{
		SaltSize:        x.SaltSize,
		BlockSize:       x.BlockSize,
		KeyBits:         x.KeyBits,
		HashSize:        x.HashSize,
		CipherAlgorithm: x.CipherAlgorithm,
		CipherChaining:  x.CipherChaining,
		HashAlgorithm:   x.HashAlgorithm,
		SaltValue:       salt,
	}, nil
}

func decodeB64(elem string, attr string, s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: <%s %s>: %v", ErrInvalidEncryptionInfo, elem, attr, err)
	}
	return b, nil
}
