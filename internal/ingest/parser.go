package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/trafficlens/trafficlens/internal/logstore"
)

// allowedCategories is the application-category allow set. Lines from any
// other category are skipped at parse time so the store only ever holds
// traffic relevant to usage analysis.
var allowedCategories = map[string]bool{
	"Social.Media": true,
	"Video.Audio":  true,
	"Game":         true,
	"Adult":        true,
}

var kvPattern = regexp.MustCompile(`(\w+)=("[^"]*"|\S+)`)

// ParseLine parses one firewall log line in key=value format into a record.
// The second return value is false when the line carries no appcat or its
// category is outside the allow set.
func ParseLine(line string) (logstore.LogRecord, bool) {
	fields := map[string]string{}
	for _, m := range kvPattern.FindAllStringSubmatch(line, -1) {
		fields[m[1]] = strings.Trim(m[2], `"`)
	}

	if !allowedCategories[fields["appcat"]] {
		return logstore.LogRecord{}, false
	}

	return logstore.LogRecord{
		Date:           fields["date"],
		Time:           fields["time"],
		EventTime:      fields["eventtime"],
		LogID:          fields["logid"],
		SrcIP:          fields["srcip"],
		SrcName:        fields["srcname"],
		SrcPort:        atoi(fields["srcport"]),
		DstIP:          fields["dstip"],
		DstPort:        atoi(fields["dstport"]),
		Proto:          atoi(fields["proto"]),
		Action:         fields["action"],
		PolicyName:     fields["policyname"],
		Service:        fields["service"],
		Transport:      fields["transport"],
		AppID:          atoi(fields["appid"]),
		App:            fields["app"],
		AppCat:         fields["appcat"],
		AppRisk:        fields["apprisk"],
		Duration:       atoi64(fields["duration"]),
		SentByte:       atoi64(fields["sentbyte"]),
		RcvdByte:       atoi64(fields["rcvdbyte"]),
		SentPkt:        atoi64(fields["sentpkt"]),
		RcvdPkt:        atoi64(fields["rcvdpkt"]),
		ShaperSentName: fields["shapersentname"],
		OSName:         fields["osname"],
		MasterSrcMac:   fields["mastersrcmac"],
	}, true
}

// atoi converts a numeric field, returning 0 for anything unparsable. Firewall
// exports occasionally carry "N/A" in numeric positions.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func atoi64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
