// facts.go provides the random fact generators used to dress synthetic audit events and
// decoy seed data: origin IP addresses drawn from plausible geographic CIDR ranges,
// browser user-agent signatures, personal names, and bait file names.
package simulator

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
	"time"
)

// originRanges is the fixed pool of public CIDR ranges that synthetic origin
// addresses are drawn from. The ranges are spread across several regions so a
// casual reader of the audit log sees geographically diverse traffic.
var originRanges = []string{
	"23.94.16.0/20",    // US, hosting
	"45.142.212.0/22",  // NL, hosting
	"62.210.0.0/16",    // FR, hosting
	"77.88.0.0/18",     // RU
	"89.248.160.0/21",  // NL
	"103.21.244.0/22",  // IN/APAC
	"118.193.0.0/16",   // CN/HK
	"152.32.128.0/17",  // SG
	"181.214.0.0/16",   // BR/LATAM
	"196.196.0.0/16",   // ZA
}

// userAgents is the pool of client signatures attached to synthetic events.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.2365.92",
	"curl/8.5.0",
}

var firstNames = []string{
	"Olivia", "Liam", "Emma", "Noah", "Sofia", "Mateo", "Hannah", "Lucas",
	"Priya", "Wei", "Amara", "Jonas", "Ingrid", "Tomás", "Yuki", "Omar",
}

var lastNames = []string{
	"Martinez", "Chen", "Johansson", "Okafor", "Novak", "Silva", "Dubois",
	"Petrov", "Tanaka", "Schmidt", "Rossi", "Kowalski", "Andersen", "Haddad",
}

// baitFileNames is the pool of file names for decoy file links. They are chosen
// to look worth exfiltrating.
var baitFileNames = []string{
	"Q3_financials_draft.xlsx",
	"payroll_export_2026.csv",
	"customer_master_list.xlsx",
	"board_minutes_confidential.docx",
	"vpn_credentials_backup.kdbx",
	"merger_term_sheet_v4.pdf",
	"aws_access_review.xlsx",
	"employee_ssn_audit.csv",
	"product_roadmap_internal.pptx",
	"db_connection_strings.txt",
	"salesforce_export_full.csv",
	"passport_scans.zip",
}

// hostRange is a pre-parsed CIDR block: the network address as a big-endian
// uint32 plus the usable host-address count (block size minus network and
// broadcast addresses).
type hostRange struct {
	cidr    string
	network uint32
	hosts   uint32
}

var hostRanges []hostRange

func init() {
	hostRanges = make([]hostRange, 0, len(originRanges))
	for _, c := range originRanges {
		_, ipnet, err := net.ParseCIDR(c)
		if err != nil {
			panic(fmt.Sprintf("invalid origin range %q: %v", c, err))
		}
		ones, bits := ipnet.Mask.Size()
		if bits != 32 || ones > 30 {
			panic(fmt.Sprintf("origin range %q must be an IPv4 block of /30 or wider", c))
		}
		hostRanges = append(hostRanges, hostRange{
			cidr:    c,
			network: binary.BigEndian.Uint32(ipnet.IP.To4()),
			hosts:   uint32(1<<(32-ones)) - 2,
		})
	}
}

// RandomIP returns an IPv4 address drawn from a uniformly chosen pool range.
// The host offset is sampled from [1, hosts], so the result is never the
// network or broadcast address of its block.
func RandomIP(rng *rand.Rand) string {
	r := hostRanges[rng.Intn(len(hostRanges))]
	offset := uint32(rng.Int63n(int64(r.hosts))) + 1
	addr := r.network | offset

	var b [4]byte
	binary.BigEndian.PutUint32(b[:], addr)
	return net.IPv4(b[0], b[1], b[2], b[3]).String()
}

// RandomUserAgent returns a client signature uniformly sampled from the pool.
func RandomUserAgent(rng *rand.Rand) string {
	return userAgents[rng.Intn(len(userAgents))]
}

// RandomFullName returns a "First Last" name from the name pools.
func RandomFullName(rng *rand.Rand) string {
	return firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
}

// RandomFileName returns a bait file name uniformly sampled from the pool.
func RandomFileName(rng *rand.Rand) string {
	return baitFileNames[rng.Intn(len(baitFileNames))]
}

// RandomExpiry returns a link expiry between 1 and 90 days after now.
func RandomExpiry(rng *rand.Rand, now time.Time) time.Time {
	return now.AddDate(0, 0, 1+rng.Intn(90))
}
