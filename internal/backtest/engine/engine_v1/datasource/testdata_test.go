package datasource

import (
	"os"
	"path/filepath"
)

const longCSV = `time,symbol,open,high,low,close,adj_close,volume
2024-01-02,AAPL,10,11,9,10.5,10.4,1000
2024-01-02,MSFT,20,21,19,20.5,20.4,2000
2024-01-03,AAPL,10.5,12,10,11.5,11.4,1100
2024-01-03,MSFT,20.5,22,20,21.5,21.4,2100
2024-01-04,AAPL,11.5,13,11,12.5,12.4,1200
2024-01-04,MSFT,21.5,23,21,22.5,22.4,2200
`

const longCSVNoAdjClose = `time,symbol,open,high,low,close,volume
2024-01-02,AAPL,10,11,9,10.5,1000
2024-01-03,AAPL,10.5,12,10,11.5,1100
`

const wideCSV = `,Adj Close,Adj Close,Close,Close,High,High,Low,Low,Open,Open,Volume,Volume
,AAPL,MSFT,AAPL,MSFT,AAPL,MSFT,AAPL,MSFT,AAPL,MSFT,AAPL,MSFT
Date,,,,,,,,,,,,
2024-01-02,10.4,20.4,10.5,20.5,11,21,9,19,10,20,1000,2000
2024-01-03,11.4,21.4,11.5,21.5,12,22,10,20,10.5,20.5,1100,2100
2024-01-04,12.4,,12.5,,13,,11,,11.5,,1200,
`

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		panic(err)
	}

	return path
}
