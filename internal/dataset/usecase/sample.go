package usecase

// SampleFilename is the dataset created by Seed on an empty registry.
const SampleFilename = "sample_data.csv"

// SampleSymbol labels the seeded dataset.
const SampleSymbol = "ES"

const sampleCSV = `timestamp,open,high,low,close,volume
2024-01-01 10:00:00,4500.00,4503.25,4498.50,4502.00,1520
2024-01-01 10:01:00,4502.00,4506.75,4501.25,4505.50,1875
2024-01-01 10:02:00,4505.50,4508.00,4503.00,4504.25,1340
2024-01-01 10:03:00,4504.25,4510.50,4504.00,4509.75,2210
2024-01-01 10:04:00,4509.75,4512.00,4507.25,4512.00,1985
`
